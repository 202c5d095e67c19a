package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/cli"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		color.Red("❌ 错误: %v", err)
		os.Exit(1)
	}
}
