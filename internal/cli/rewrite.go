package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/logger"
	"github.com/nerdneilsfield/go-rewriter-agent/internal/rewriter"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

func newRewriteCommand() *cobra.Command {
	var (
		outputFile      string
		mode            string
		articleType     string
		providerName    string
		checkSimilarity bool
		diffOutput      bool
		preserveHTML    bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite input_file",
		Short: "改写单篇文章",
		Long: `改写单篇文章。

示例:

  # 技术博客（本地模式）
  rewriter rewrite input.html -o output.html --mode local --type tech

  # 保险文章（API模式）
  rewriter rewrite input.html -o output.html --mode api --type insurance --provider openai`,
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

			printBanner("文章改写工具")
			printStep("📖 输入文件: %s", args[0])
			printStep("✍️  开始改写 (%s 类型, %s 后端)...", articleType, backend.GetName())

			result, err := engine.RewriteFile(cmd.Context(), args[0], outputFile, rewriter.Options{
				ArticleType:     providers.ArticleType(articleType),
				PreserveHTML:    preserveHTML,
				CheckSimilarity: checkSimilarity,
			})
			if err != nil {
				return describeError(err)
			}

			printOK("改写完成，已保存到: %s", outputFile)
			printStep("原文预览:   %s", preview(result.OriginalText, 60))
			printStep("改写后预览: %s", preview(result.RewrittenText, 60))

			if result.TermReport != nil {
				fmt.Println()
				showTermReport(result.TermReport)
			}
			if result.SimilarityReport != nil {
				fmt.Println()
				showSimilarityReport(result.SimilarityReport)
			}
			if diffOutput {
				showDiff(result.OriginalText, result.RewrittenText)
			}

			green.Println("\n✨ 任务完成！")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "输出文件路径")
	cmd.Flags().StringVarP(&mode, "mode", "m", "local", "改写模式: local(本地) 或 api(API)")
	cmd.Flags().StringVarP(&articleType, "type", "t", "tech", "文章类型: tech(技术博客) 或 insurance(保险文章)")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "API提供商: openai / claude / qwen (仅api模式)")
	cmd.Flags().BoolVar(&checkSimilarity, "check-similarity", false, "检查改写后的相似度")
	cmd.Flags().BoolVar(&diffOutput, "show-diff", false, "显示文本差异对比")
	cmd.Flags().BoolVar(&preserveHTML, "preserve-html", true, "保留HTML结构")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// describeError 把错误分类转成带处置建议的提示
func describeError(err error) error {
	switch providers.CodeOf(err) {
	case providers.ErrCodeTimeout:
		printFail("请求超时，文章可能过长，请尝试分段处理")
	case providers.ErrCodeUnavailable:
		printFail("改写后端不可用，请检查服务状态或稍后重试")
	case providers.ErrCodeEmptyResult:
		printFail("模型返回空内容")
	case providers.ErrCodeConfig:
		printFail("配置错误，请检查配置文件与环境变量")
	}
	return err
}
