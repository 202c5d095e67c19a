package rewriter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/config"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

// stubBackend 测试用的改写后端
type stubBackend struct {
	rewriteFn func(ctx context.Context, req *providers.Request) (*providers.Response, error)
	lastReq   *providers.Request
}

func (s *stubBackend) Rewrite(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	s.lastReq = req
	return s.rewriteFn(ctx, req)
}

func (s *stubBackend) GetName() string { return "stub" }

func (s *stubBackend) HealthCheck(ctx context.Context) error { return nil }

func fixedResponse(text string) func(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return func(ctx context.Context, req *providers.Request) (*providers.Response, error) {
		return &providers.Response{Text: text, Model: "stub-model"}, nil
	}
}

func testConfig() *config.Config {
	return &config.Config{
		PreserveCode:        true,
		SimilarityThreshold: 0.3,
		ProtectedTerms: map[string][]string{
			"tech": {"Docker", "Kubernetes"},
		},
	}
}

func TestRewriteContent(t *testing.T) {
	t.Run("HTML Structure Preserved", func(t *testing.T) {
		content := `<html><body><h1>旧标题</h1><p class="lead">旧的第一段，讲 Docker 的用法。</p><p>旧的第二段。</p></body></html>`
		backend := &stubBackend{rewriteFn: fixedResponse(
			"新标题\n\n新的第一段，还是讲 ___TERM_0___ 的用法。\n\n新的第二段。")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteContent(context.Background(), content, Options{
			ArticleType:  providers.ArticleTech,
			PreserveHTML: true,
		})
		require.NoError(t, err)

		// 发给后端的提示词里术语已经换成了占位符
		assert.Contains(t, backend.lastReq.Prompt, "___TERM_0___")
		assert.NotContains(t, backend.lastReq.Prompt, "Docker")

		// 改写文本里的占位符被还原
		assert.Contains(t, result.RewrittenText, "Docker")
		assert.NotContains(t, result.RewrittenText, "___TERM_")

		// 原有标签结构与属性保留，文本按位置替换
		assert.Contains(t, result.HTML, "<h1>新标题</h1>")
		assert.Contains(t, result.HTML, `class="lead"`)
		assert.Contains(t, result.HTML, "新的第二段。")
		assert.NotContains(t, result.HTML, "旧的第一段")

		require.NotNil(t, result.TermReport)
		assert.True(t, result.TermReport.Protected)
		assert.Equal(t, "stub", result.Provider)
		assert.Equal(t, "stub-model", result.Model)
		assert.NotEmpty(t, result.RunID)
		assert.Nil(t, result.SimilarityReport)
	})

	t.Run("Code Block Survives Round Trip", func(t *testing.T) {
		content := `<html><body><p>介绍 Docker 部署。</p><pre>docker run</pre></body></html>`
		backend := &stubBackend{rewriteFn: fixedResponse("讲讲 ___TERM_0___ 怎么部署。")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteContent(context.Background(), content, Options{
			ArticleType:  providers.ArticleTech,
			PreserveHTML: true,
		})
		require.NoError(t, err)

		// 提示词里代码块只以占位符出现
		assert.Contains(t, backend.lastReq.Prompt, "___CODE_BLOCK_0___")
		assert.NotContains(t, backend.lastReq.Prompt, "docker run")

		// 代码块原样保留在最终HTML中
		assert.Contains(t, result.HTML, "<pre>docker run</pre>")
		assert.Contains(t, result.HTML, "讲讲 Docker 怎么部署。")
	})

	t.Run("Plain Text Uses Synthesized Document", func(t *testing.T) {
		backend := &stubBackend{rewriteFn: fixedResponse("改写后的普通文本。")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteContent(context.Background(), "这是一段普通文本。", Options{
			ArticleType:  providers.ArticleTech,
			PreserveHTML: true,
		})
		require.NoError(t, err)
		assert.Contains(t, result.HTML, "<!DOCTYPE html>")
		assert.Contains(t, result.HTML, "<p>改写后的普通文本。</p>")
	})

	t.Run("Similarity Check Requested", func(t *testing.T) {
		backend := &stubBackend{rewriteFn: fixedResponse("completely different words")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteContent(context.Background(), "一段完全不同的中文原文。", Options{
			ArticleType:     providers.ArticleTech,
			CheckSimilarity: true,
		})
		require.NoError(t, err)
		require.NotNil(t, result.SimilarityReport)
		assert.True(t, result.SimilarityReport.Passed)
	})

	t.Run("Empty Content Rejected", func(t *testing.T) {
		engine := NewEngine(testConfig(), &stubBackend{}, zap.NewNop())
		_, err := engine.RewriteContent(context.Background(), "   ", Options{
			ArticleType: providers.ArticleTech,
		})
		assert.ErrorIs(t, err, providers.ErrEmptyText)
	})

	t.Run("Invalid Article Type Rejected", func(t *testing.T) {
		engine := NewEngine(testConfig(), &stubBackend{}, zap.NewNop())
		_, err := engine.RewriteContent(context.Background(), "内容", Options{
			ArticleType: providers.ArticleType("news"),
		})
		require.Error(t, err)
		assert.Equal(t, providers.ErrCodeConfig, providers.CodeOf(err))
	})

	t.Run("Backend Error Propagates", func(t *testing.T) {
		backend := &stubBackend{rewriteFn: func(ctx context.Context, req *providers.Request) (*providers.Response, error) {
			return nil, providers.NewError(providers.ErrCodeUnavailable, "service down")
		}}
		engine := NewEngine(testConfig(), backend, zap.NewNop())
		_, err := engine.RewriteContent(context.Background(), "内容", Options{
			ArticleType: providers.ArticleTech,
		})
		require.Error(t, err)
		assert.Equal(t, providers.ErrCodeUnavailable, providers.CodeOf(err))
	})

	t.Run("Missing Term Reported Not Fatal", func(t *testing.T) {
		// 模型吞掉了占位符：改写仍然成功，但报告里记缺失
		backend := &stubBackend{rewriteFn: fixedResponse("改写结果把术语弄丢了。")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteContent(context.Background(), "原文讲 Docker 的用法。", Options{
			ArticleType: providers.ArticleTech,
		})
		require.NoError(t, err)
		require.NotNil(t, result.TermReport)
		assert.False(t, result.TermReport.Protected)
		assert.Equal(t, []string{"Docker"}, result.TermReport.MissingTerms)
	})
}

func TestRewriteFile(t *testing.T) {
	t.Run("Markdown Input", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "post.md")
		output := filepath.Join(dir, "out", "post.html")
		require.NoError(t, os.WriteFile(input, []byte("# 标题\n\n正文段落。\n"), 0o644))

		backend := &stubBackend{rewriteFn: fixedResponse("新标题\n\n新正文。")}
		engine := NewEngine(testConfig(), backend, zap.NewNop())

		result, err := engine.RewriteFile(context.Background(), input, output, Options{
			ArticleType:  providers.ArticleTech,
			PreserveHTML: true,
		})
		require.NoError(t, err)

		written, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, result.HTML, string(written))
		assert.Contains(t, string(written), "<h1>新标题</h1>")
		assert.Contains(t, string(written), "新正文。")
	})

	t.Run("Missing Input File", func(t *testing.T) {
		engine := NewEngine(testConfig(), &stubBackend{}, zap.NewNop())
		_, err := engine.RewriteFile(context.Background(),
			filepath.Join(t.TempDir(), "absent.html"), filepath.Join(t.TempDir(), "out.html"), Options{
				ArticleType: providers.ArticleTech,
			})
		require.Error(t, err)
		assert.Equal(t, providers.ErrCodeConfig, providers.CodeOf(err))
	})
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("<p>第一段</p><p>第二段</p>", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "第一段\n第二段", text)
}

func TestEngineAccessors(t *testing.T) {
	backend := &stubBackend{}
	engine := NewEngine(testConfig(), backend, nil)
	assert.Same(t, backend, engine.Backend().(*stubBackend))
	assert.NotNil(t, engine.Similarity())
}
