package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/logger"
	"github.com/nerdneilsfield/go-rewriter-agent/internal/rewriter"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/similarity"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check file1 file2",
		Short: "检查两个文件的相似度",
		Long: `检查两个文件的相似度。

示例:

  rewriter check original.html rewritten.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.Debug)
			defer func() { _ = log.Sync() }()

			cyan.Println("📊 相似度检测")
			fmt.Println()

			texts := make([]string, 2)
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				texts[i], err = rewriter.ExtractText(string(data), log)
				if err != nil {
					return err
				}
			}

			fmt.Printf("文件1: %s\n", args[0])
			fmt.Printf("文件2: %s\n\n", args[1])

			checker := similarity.NewChecker(cfg.SimilarityThreshold)
			report := checker.CheckQuality(texts[0], texts[1])
			showSimilarityReport(&report)
			return nil
		},
	}
	return cmd
}
