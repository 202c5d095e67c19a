// Package cli 提供命令行入口。CLI只是外围胶水：读文件、装配配置、
// 调用 internal/rewriter 的编排逻辑并展示结果。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/config"
)

var (
	cfgFile   string
	debugMode bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rewriter",
		Short: "智能文章伪原创工具",
		Long: `智能文章伪原创工具，在保留HTML结构、代码块与专业术语的前提下，
用本地模型或远端API改写文章以降低与原文的文字相似度。

支持的改写后端:
  - local: Ollama 本地大语言模型
  - api:   OpenAI / Claude / 通义千问（兼容模式）`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认查找 .rewriter.yaml）")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试日志")

	rootCmd.AddCommand(newRewriteCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newInfoCommand())

	return rootCmd
}

// loadConfig 加载配置并套用全局标志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Debug = true
	}
	return cfg, nil
}
