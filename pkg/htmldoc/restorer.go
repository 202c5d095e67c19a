package htmldoc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// 段落候选：直接承载文本的块级元素
const paragraphSelector = "p, h1, h2, h3, h4, h5, h6, li, div"

// 嵌套了这些元素的容器不算叶子段落，避免div套p时重复计数
const nestedBlockSelector = "p, h1, h2, h3, h4, h5, h6"

// 回退路径里原样透传的代码片段
var codeSpanPattern = regexp.MustCompile(`(?s)<pre>.*?</pre>|<code>.*?</code>`)

// 标题启发式的关键词与终止标点
var (
	headingKeywords     = []string{"指南", "Hook", "总结", "为什么", "如何"}
	terminalPunctuation = []string{"。", ".", "，"}
)

// RestoreHTML 把改写后的纯文本按位置映射回原始HTML的结构元素上。
// 原始HTML会被重新解析（而不是复用抽取时的工作树），替换只改文本、
// 保留标签和属性。段落数不一致时按较短一侧截断，不报错，只记录日志。
func (p *Processor) RestoreHTML(originalHTML, rewrittenText string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(originalHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	elements := paragraphElements(doc)
	paragraphs := SplitParagraphs(rewrittenText)

	if len(elements) != len(paragraphs) {
		p.logger.Warn("段落数量不匹配，按较短一侧截断替换",
			zap.Int("elements", len(elements)),
			zap.Int("paragraphs", len(paragraphs)))
	}

	n := len(elements)
	if len(paragraphs) < n {
		n = len(paragraphs)
	}
	for i := 0; i < n; i++ {
		elements[i].SetText(paragraphs[i])
	}

	htmlStr, err := renderDocument(doc)
	if err != nil {
		return "", err
	}
	if p.preserveCode {
		htmlStr = p.restoreCodeBlocks(htmlStr)
	}
	return htmlStr, nil
}

// SimpleRestore 在没有原始结构可用时，用启发式从零合成HTML。
// 代码片段原样透传，其余按行生成标题或段落。
func (p *Processor) SimpleRestore(rewrittenText string) string {
	text := rewrittenText
	if p.preserveCode {
		text = p.restoreCodeBlocks(text)
	}

	blocks := []string{
		"<!DOCTYPE html>",
		`<html lang="zh-CN">`,
		"<head>",
		`<meta charset="utf-8">`,
		"</head>",
		"<body>",
	}

	for _, part := range splitCodeSpans(text) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "<pre>") || strings.HasPrefix(part, "<code>") {
			blocks = append(blocks, part)
			continue
		}
		for _, para := range strings.Split(part, "\n\n") {
			for _, line := range strings.Split(para, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				blocks = append(blocks, renderLine(line))
			}
		}
	}

	blocks = append(blocks, "</body>", "</html>")
	return strings.Join(blocks, "\n")
}

// SplitParagraphs 按空行把改写后的文本切成段落，去掉首尾空白和空段
func SplitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// paragraphElements 按文档顺序收集叶子文本容器
func paragraphElements(doc *goquery.Document) []*goquery.Selection {
	var elements []*goquery.Selection
	doc.Find(paragraphSelector).Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			return
		}
		if s.Find(nestedBlockSelector).Length() > 0 {
			return
		}
		elements = append(elements, s)
	})
	return elements
}

// restoreCodeBlocks 把占位符按索引顺序替换回代码块原文。
// 占位符被改写步骤弄丢时对应代码块无法还原，记录告警后跳过。
func (p *Processor) restoreCodeBlocks(text string) string {
	for idx, block := range p.codeBlocks {
		placeholder := fmt.Sprintf(CodePlaceholder, idx)
		if !strings.Contains(text, placeholder) {
			p.logger.Warn("代码块占位符缺失，对应代码块未能还原",
				zap.Int("index", idx))
			continue
		}
		text = strings.ReplaceAll(text, placeholder, block)
	}
	return text
}

// splitCodeSpans 把文本按<pre>/<code>片段切开，代码片段单独成段
func splitCodeSpans(text string) []string {
	var parts []string
	last := 0
	for _, loc := range codeSpanPattern.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(parts, text[last:])
}

// renderLine 对单行应用标题启发式
func renderLine(line string) string {
	if isHeading(line) {
		if strings.Contains(line, "完全指南") {
			return "<h1>" + line + "</h1>"
		}
		return "<h2>" + line + "</h2>"
	}
	return "<p>" + line + "</p>"
}

// isHeading 标题判定：足够短、不以终止标点结尾、含标题式关键词
func isHeading(line string) bool {
	if utf8.RuneCountInString(line) >= 50 {
		return false
	}
	for _, punct := range terminalPunctuation {
		if strings.HasSuffix(line, punct) {
			return false
		}
	}
	for _, kw := range headingKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// renderDocument 序列化整棵文档树
func renderDocument(doc *goquery.Document) (string, error) {
	var buf bytes.Buffer
	for _, node := range doc.Nodes {
		if err := html.Render(&buf, node); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return buf.String(), nil
}
