package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/similarity"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/terms"
)

// diff 显示的最大行数
const maxDiffLines = 30

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

// printBanner 打印分节横幅
func printBanner(title string) {
	line := strings.Repeat("=", 60)
	cyan.Println(line)
	cyan.Println(title)
	cyan.Println(line)
}

// printStep 打印进行中的步骤
func printStep(format string, args ...interface{}) {
	yellow.Printf(format+"\n", args...)
}

// printOK 打印成功信息
func printOK(format string, args ...interface{}) {
	green.Printf("✓ "+format+"\n", args...)
}

// printFail 打印失败信息
func printFail(format string, args ...interface{}) {
	red.Printf("✗ "+format+"\n", args...)
}

// preview 截断长文本用于终端展示，按显示宽度而非字节数截
func preview(text string, width int) string {
	return runewidth.Truncate(strings.ReplaceAll(text, "\n", " "), width, "…")
}

// showDiff 显示原文与改写结果的统一diff，行数超限后截断
func showDiff(original, rewritten string) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(rewritten),
		FromFile: "原文",
		ToFile:   "改写后",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		printFail("生成差异对比失败: %v", err)
		return
	}

	fmt.Println()
	printBanner("📝 文本差异对比 (Diff)")

	count := 0
	for _, line := range strings.Split(text, "\n") {
		if count >= maxDiffLines {
			yellow.Printf("... (仅显示前%d行差异)\n", maxDiffLines)
			break
		}
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			green.Println(line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			red.Println(line)
		case strings.HasPrefix(line, "@@"):
			cyan.Println(line)
		default:
			fmt.Println(line)
		}
		count++
	}
	fmt.Println()
}

// showTermReport 用表格展示术语校验结果
func showTermReport(report *terms.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"术语校验", "数量", "明细"})
	t.AppendRow(table.Row{"原文术语", report.OriginalCount, ""})
	t.AppendRow(table.Row{"改写后术语", report.RewrittenCount, ""})
	t.AppendRow(table.Row{"丢失", len(report.MissingTerms), strings.Join(report.MissingTerms, ", ")})
	t.AppendRow(table.Row{"多出", len(report.ExtraTerms), strings.Join(report.ExtraTerms, ", ")})
	t.Render()

	if report.Protected {
		printOK("全部术语保护完好")
	} else {
		printFail("有术语在改写中丢失")
	}
}

// showSimilarityReport 展示相似度检测结果
func showSimilarityReport(report *similarity.Report) {
	c := green
	if !report.Passed {
		c = red
	}
	c.Printf("相似度: %.2f%%\n", report.Similarity*100)
	c.Printf("阈值:   %.2f%%\n", report.Threshold*100)
	c.Printf("状态:   %s\n", report.Status)
	c.Printf("评价:   %s\n", report.Message)
}
