package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/logger"
	"github.com/nerdneilsfield/go-rewriter-agent/internal/rewriter"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

func newBatchCommand() *cobra.Command {
	var (
		outputDir    string
		mode         string
		articleType  string
		providerName string
	)

	cmd := &cobra.Command{
		Use:   "batch pattern",
		Short: "批量改写文件",
		Long: `按glob模式批量改写文件，单个文件失败不会中止整批。

示例:

  rewriter batch "./articles/*.html" -o ./output/ --mode local --type tech`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.Debug)
			defer func() { _ = log.Sync() }()

			backend, err := rewriter.NewBackend(cfg, mode, providerName)
			if err != nil {
				return err
			}
			engine := rewriter.NewEngine(cfg, backend, log)

			var bar *pterm.ProgressbarPrinter
			progress := func(done, total int, item rewriter.BatchItem) {
				if bar == nil {
					bar, _ = pterm.DefaultProgressbar.WithTotal(total).WithTitle("处理进度").Start()
				}
				bar.Increment()
			}

			batch, err := engine.RewriteBatch(cmd.Context(), args[0], outputDir, rewriter.Options{
				ArticleType: providers.ArticleType(articleType),
			}, progress)
			if bar != nil {
				_, _ = bar.Stop()
			}
			if err != nil {
				return describeError(err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"文件", "状态", "说明"})
			for _, item := range batch.Items {
				if item.Err != nil {
					t.AppendRow(table.Row{item.InputPath, "失败", item.Err.Error()})
				} else {
					t.AppendRow(table.Row{item.InputPath, "成功", item.OutputPath})
				}
			}
			t.Render()

			if batch.Failed > 0 {
				printFail("完成，成功 %d/%d 个文件", batch.Succeeded, len(batch.Items))
			} else {
				printOK("完成! 成功处理 %d/%d 个文件", batch.Succeeded, len(batch.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "输出目录")
	cmd.Flags().StringVarP(&mode, "mode", "m", "local", "改写模式: local 或 api")
	cmd.Flags().StringVarP(&articleType, "type", "t", "tech", "文章类型: tech 或 insurance")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "API提供商 (仅api模式)")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}
