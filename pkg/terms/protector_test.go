package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtectRestore(t *testing.T) {
	t.Run("Round Trip Is Identity", func(t *testing.T) {
		p := NewProtector([]string{"API", "Docker", "Kubernetes"})
		text := "The API runs inside Docker, and Kubernetes schedules it. The API is fast."

		protected := p.Protect(text)
		assert.NotContains(t, protected, "API")
		assert.NotContains(t, protected, "Docker")
		assert.Contains(t, protected, "___TERM_0___")
		assert.Contains(t, protected, "___TERM_1___")
		assert.Contains(t, protected, "___TERM_2___")

		assert.Equal(t, text, p.Restore(protected))
	})

	t.Run("Whole Word Only", func(t *testing.T) {
		p := NewProtector([]string{"API"})
		protected := p.Protect("The API and the APIs differ.")

		// "APIs" 不是独立的 "API"，不应被替换
		assert.Equal(t, "The ___TERM_0___ and the APIs differ.", protected)
		assert.Equal(t, "The API and the APIs differ.", p.Restore(protected))
	})

	t.Run("String Edge Boundaries", func(t *testing.T) {
		p := NewProtector([]string{"API"})
		assert.Equal(t, "___TERM_0___", p.Protect("API"))

		p2 := NewProtector([]string{"保单"})
		protected := p2.Protect("保单，是保险合同的凭证。")
		assert.Equal(t, "___TERM_0___，是保险合同的凭证。", protected)
	})

	t.Run("Absent Terms Leave Index Gaps", func(t *testing.T) {
		p := NewProtector([]string{"Kubernetes", "Docker"})
		protected := p.Protect("只用到了 Docker 而已。")

		// 索引始终对应术语在列表中的位置，未命中的术语不占用占位符
		assert.NotContains(t, protected, "___TERM_0___")
		assert.Contains(t, protected, "___TERM_1___")
	})

	t.Run("Replaces All Occurrences", func(t *testing.T) {
		p := NewProtector([]string{"Redis"})
		protected := p.Protect("Redis is fast. Redis is simple. We like Redis.")
		assert.NotContains(t, protected, "Redis")
		assert.Equal(t, "Redis is fast. Redis is simple. We like Redis.", p.Restore(protected))
	})

	t.Run("Empty Term List Is Noop", func(t *testing.T) {
		p := NewProtector(nil)
		assert.Equal(t, "随便什么文本", p.Protect("随便什么文本"))
		assert.Equal(t, "随便什么文本", p.Restore("随便什么文本"))
	})
}

func TestVerify(t *testing.T) {
	t.Run("All Terms Preserved", func(t *testing.T) {
		p := NewProtector([]string{"API", "Docker"})
		report := p.Verify("API runs in Docker.", "改写后 API 依然跑在 Docker 里。")

		assert.True(t, report.Protected)
		assert.Equal(t, 2, report.OriginalCount)
		assert.Equal(t, 2, report.RewrittenCount)
		assert.Empty(t, report.MissingTerms)
		assert.Empty(t, report.ExtraTerms)
	})

	t.Run("Missing And Extra Terms", func(t *testing.T) {
		p := NewProtector([]string{"API", "Docker", "Redis"})
		report := p.Verify("API with Docker.", "改写后只剩 API，还冒出了 Redis。")

		assert.False(t, report.Protected)
		assert.Equal(t, []string{"Docker"}, report.MissingTerms)
		assert.Equal(t, []string{"Redis"}, report.ExtraTerms)
		assert.Equal(t, 2, report.OriginalCount)
		assert.Equal(t, 2, report.RewrittenCount)
	})

	t.Run("Verify Ignores Placeholder Mechanism", func(t *testing.T) {
		// verify 独立重扫文本，不依赖之前的 Protect 调用
		p := NewProtector([]string{"MySQL"})
		report := p.Verify("MySQL 教程", "MySQL 入门")
		assert.True(t, report.Protected)
	})
}
