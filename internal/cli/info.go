package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/config"
	"github.com/nerdneilsfield/go-rewriter-agent/internal/rewriter"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/ollama"
)

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "显示系统信息和配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			printBanner("系统信息")

			yellow.Println("本地模型 (Ollama):")
			backend, err := rewriter.NewBackend(cfg, "local", "")
			if err != nil {
				return err
			}
			local, ok := backend.(*ollama.Provider)
			if ok && local.IsAvailable(cmd.Context()) {
				printOK("  Ollama服务运行中")
				if installed, _ := local.ModelInstalled(cmd.Context()); installed {
					printOK("  模型 %s 已安装", cfg.Local.Model)
				} else {
					printFail("  模型 %s 未安装", cfg.Local.Model)
					fmt.Printf("    运行: ollama pull %s\n", cfg.Local.Model)
				}
			} else {
				printFail("  Ollama服务未运行")
				fmt.Println("    运行: ollama serve")
			}

			fmt.Println()
			yellow.Println("API配置:")
			keys := []struct {
				name string
				key  string
			}{
				{"OpenAI", cfg.API.OpenAI.APIKey},
				{"Claude", cfg.API.Claude.APIKey},
				{"Qwen", cfg.API.Qwen.APIKey},
			}
			for _, k := range keys {
				if k.key != "" && !config.IsEnvRef(k.key) {
					printOK("  %s API Key 已配置", k.name)
				} else {
					yellow.Printf("○ %s API Key 未配置\n", k.name)
				}
			}
			return nil
		},
	}
	return cmd
}
