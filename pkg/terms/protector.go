// Package terms 在改写前后保护专业术语：改写前换成占位符，
// 改写后还原，并校验术语没有在往返中丢失。
package terms

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// TermPlaceholder 术语占位符格式。与代码块占位符一样是固定的线上契约
const TermPlaceholder = "___TERM_%d___"

// Protector 专业术语保护器。
// 一次 Protect/Restore 往返绑定一个实例和一篇文本，
// 不可在多篇在途文档之间并发复用。
type Protector struct {
	terms    []string
	patterns []*regexp2.Regexp
	// mapping 按 Protect 时的记录顺序保存占位符到原术语的映射
	mapping []mappingEntry
}

type mappingEntry struct {
	placeholder string
	term        string
}

// Report 术语校验结果
type Report struct {
	// OriginalCount 原文中出现的受保护术语数
	OriginalCount int `json:"original_count"`
	// RewrittenCount 改写后文本中出现的受保护术语数
	RewrittenCount int `json:"rewritten_count"`
	// MissingTerms 原文有而改写后缺失的术语（保护失败或被模型删除）
	MissingTerms []string `json:"missing_terms"`
	// ExtraTerms 改写后凭空出现的术语（模型臆造或改名）
	ExtraTerms []string `json:"extra_terms"`
	// Protected 没有术语丢失
	Protected bool `json:"protected"`
}

// NewProtector 创建术语保护器。术语按列表顺序编号，
// 占位符索引始终对应术语在列表中的位置。
// 全词匹配用 regexp2 的 \b，对中日韩文本也按Unicode词边界处理。
func NewProtector(protectedTerms []string) *Protector {
	patterns := make([]*regexp2.Regexp, len(protectedTerms))
	for i, term := range protectedTerms {
		patterns[i] = regexp2.MustCompile(`\b`+regexp2.Escape(term)+`\b`, regexp2.None)
	}
	return &Protector{
		terms:    protectedTerms,
		patterns: patterns,
	}
}

// Protect 把文本中出现的受保护术语全部替换成占位符。
// 未出现的术语直接跳过，所以占位符索引不保证连续，
// 但在同一次调用内始终与术语的列表位置一致。
func (p *Protector) Protect(text string) string {
	p.mapping = p.mapping[:0]
	protected := text

	for idx, re := range p.patterns {
		found, err := re.MatchString(protected)
		if err != nil || !found {
			continue
		}
		placeholder := fmt.Sprintf(TermPlaceholder, idx)
		replaced, err := re.Replace(protected, placeholder, -1, -1)
		if err != nil {
			continue
		}
		p.mapping = append(p.mapping, mappingEntry{placeholder: placeholder, term: p.terms[idx]})
		protected = replaced
	}
	return protected
}

// Restore 按记录顺序把占位符换回原术语。
// 必须使用同一实例上紧邻的上一次 Protect 产生的映射。
func (p *Protector) Restore(text string) string {
	restored := text
	for _, entry := range p.mapping {
		restored = strings.ReplaceAll(restored, entry.placeholder, entry.term)
	}
	return restored
}

// Verify 不经过占位符机制，独立重扫两段文本，
// 给出术语集合的对称差和保护结论。
func (p *Protector) Verify(original, rewritten string) Report {
	originalTerms := p.extractTerms(original)
	rewrittenTerms := p.extractTerms(rewritten)

	report := Report{
		OriginalCount:  len(originalTerms),
		RewrittenCount: len(rewrittenTerms),
	}
	for _, term := range p.terms {
		if originalTerms[term] && !rewrittenTerms[term] {
			report.MissingTerms = append(report.MissingTerms, term)
		}
		if rewrittenTerms[term] && !originalTerms[term] {
			report.ExtraTerms = append(report.ExtraTerms, term)
		}
	}
	report.Protected = len(report.MissingTerms) == 0
	return report
}

// extractTerms 找出文本中按全词匹配出现的受保护术语
func (p *Protector) extractTerms(text string) map[string]bool {
	found := make(map[string]bool)
	for i, re := range p.patterns {
		if ok, err := re.MatchString(text); err == nil && ok {
			found[p.terms[i]] = true
		}
	}
	return found
}
