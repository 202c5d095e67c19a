// Package similarity 提供改写前后文本的词面相似度评估。
// 这里只做基于编辑距离的词面打分；语义级的向量相似度不在本仓库内，
// 调用方可以用同样的 Score(a, b) 形状接入外部评分器。
package similarity

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold 默认合格阈值：相似度低于该值视为改写合格
const DefaultThreshold = 0.3

// Checker 文本相似度检测器
type Checker struct {
	threshold float64
}

// Report 改写质量报告
type Report struct {
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Passed     bool    `json:"passed"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
}

// NewChecker 创建相似度检测器。threshold<=0 时使用默认阈值
func NewChecker(threshold float64) *Checker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Checker{threshold: threshold}
}

// Score 计算两段文本的相似度，0表示完全不同，1表示完全相同。
// 用归一化的Levenshtein编辑距离：1 - dist/max(len)。
func (c *Checker) Score(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dist := fuzzy.LevenshteinDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	score := 1.0 - float64(dist)/float64(maxLen)
	if score < 0 {
		score = 0
	}
	return score
}

// CheckQuality 检查改写质量：相似度低于阈值为合格
func (c *Checker) CheckQuality(original, rewritten string) Report {
	similarity := c.Score(original, rewritten)

	report := Report{
		Similarity: similarity,
		Threshold:  c.threshold,
		Passed:     similarity < c.threshold,
	}
	if report.Passed {
		report.Status = "PASS"
	} else {
		report.Status = "FAIL"
	}
	report.Message = qualityMessage(similarity, c.threshold)
	return report
}

// qualityMessage 生成质量评价消息
func qualityMessage(similarity, threshold float64) string {
	switch {
	case similarity < threshold && similarity < 0.2:
		return "优秀：改写效果很好，相似度很低"
	case similarity < threshold:
		return "良好：改写效果不错，相似度较低"
	case similarity < 0.5:
		return "一般：相似度偏高，建议重新改写"
	default:
		return "较差：相似度过高，需要重新改写"
	}
}
