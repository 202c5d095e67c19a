// Package htmldoc 负责HTML与纯文本之间的往返：抽取待改写文本、
// 保护代码块子树、以及把改写结果还原成HTML。
package htmldoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// CodePlaceholder 代码块占位符格式。这是抽取与还原之间的线上契约，
// 占位符必须原样穿过中间的文本变换。
const CodePlaceholder = "___CODE_BLOCK_%d___"

// 3个及以上连续换行压缩为一个空行
var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Processor HTML解析与还原处理器。
// 一个实例只服务一篇文档的一次往返：ExtractText 把代码块按文档顺序
// 抽出并记录在实例上，RestoreHTML / SimpleRestore 按同样的索引还原。
// 在还原之前对第二篇文档复用实例会破坏占位符索引映射。
type Processor struct {
	preserveCode bool
	codeBlocks   []string
	logger       *zap.Logger
}

// NewProcessor 创建HTML处理器
func NewProcessor(preserveCode bool, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		preserveCode: preserveCode,
		logger:       logger,
	}
}

// CodeBlocks 返回已抽取代码块的副本，按占位符索引排列
func (p *Processor) CodeBlocks() []string {
	out := make([]string, len(p.codeBlocks))
	copy(out, p.codeBlocks)
	return out
}

// ExtractText 从HTML中提取纯文本用于改写。
// 解析是容错的，残缺标记不会让抽取失败。
func (p *Processor) ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if p.preserveCode {
		p.extractCodeBlocks(doc)
	}

	text := linearize(doc.Nodes[0])
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

// extractCodeBlocks 按文档顺序序列化每个code/pre子树并换成占位符。
// 只改动解析出来的工作树，调用方的原始字符串不受影响。
func (p *Processor) extractCodeBlocks(doc *goquery.Document) {
	p.codeBlocks = p.codeBlocks[:0]
	doc.Find("code, pre").Each(func(i int, s *goquery.Selection) {
		raw, err := goquery.OuterHtml(s)
		if err != nil {
			p.logger.Warn("序列化代码块失败，退回纯文本", zap.Int("index", i), zap.Error(err))
			raw = s.Text()
		}
		p.codeBlocks = append(p.codeBlocks, raw)
		s.ReplaceWithNodes(&html.Node{
			Type: html.TextNode,
			Data: fmt.Sprintf(CodePlaceholder, i),
		})
	})
}

// linearize 把剩余文本内容线性化：每个文本段独占一行，跳过脚本与样式
func linearize(root *html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return norm.NFC.String(strings.Join(parts, "\n"))
}
