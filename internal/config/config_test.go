package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rewriter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults Applied", func(t *testing.T) {
		path := writeTempConfig(t, "mode: local\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "local", cfg.Mode)
		assert.True(t, cfg.PreserveCode)
		assert.InDelta(t, 0.3, cfg.SimilarityThreshold, 1e-9)
		assert.Equal(t, "qwen2.5:14b", cfg.Local.Model)
		assert.Equal(t, "http://localhost:11434", cfg.Local.BaseURL)
		assert.Equal(t, "openai", cfg.API.Provider)
		assert.Contains(t, cfg.ProtectedTerms["tech"], "Docker")
		assert.Contains(t, cfg.ProtectedTerms["insurance"], "保单")
	})

	t.Run("File Values Override Defaults", func(t *testing.T) {
		path := writeTempConfig(t, `
mode: api
similarity_threshold: 0.5
local:
  model: llama3:8b
api:
  provider: qwen
protected_terms:
  tech:
    - Terraform
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "api", cfg.Mode)
		assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)
		assert.Equal(t, "llama3:8b", cfg.Local.Model)
		assert.Equal(t, "qwen", cfg.API.Provider)
		assert.Equal(t, []string{"Terraform"}, cfg.ProtectedTerms["tech"])
	})

	t.Run("Env Refs Resolved", func(t *testing.T) {
		t.Setenv("TEST_REWRITER_KEY", "sk-from-env")
		path := writeTempConfig(t, `
api:
  openai:
    api_key: ${TEST_REWRITER_KEY}
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", cfg.API.OpenAI.APIKey)
	})

	t.Run("Unset Env Ref Kept Verbatim", func(t *testing.T) {
		path := writeTempConfig(t, `
api:
  claude:
    api_key: ${DEFINITELY_NOT_SET_ANYWHERE}
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		// 保留原样，让后端构造时报出清晰的配置错误
		assert.Equal(t, "${DEFINITELY_NOT_SET_ANYWHERE}", cfg.API.Claude.APIKey)
		assert.True(t, IsEnvRef(cfg.API.Claude.APIKey))
	})

	t.Run("Explicit Missing File Is Error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadPrompt(t *testing.T) {
	t.Run("Builtin Templates", func(t *testing.T) {
		cfg := &Config{}
		for _, at := range []providers.ArticleType{providers.ArticleTech, providers.ArticleInsurance} {
			tpl, err := cfg.LoadPrompt(at)
			require.NoError(t, err)
			// 模板必须带正文标记并要求模型保留占位符
			assert.Contains(t, tpl, ContentMarker)
			assert.Contains(t, tpl, "___CODE_BLOCK_0___")
			assert.Contains(t, tpl, "___TERM_0___")
		}
	})

	t.Run("Prompt Dir Override", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tech_blog.txt"),
			[]byte("自定义模板：{content}"), 0o644))

		cfg := &Config{PromptDir: dir}
		tpl, err := cfg.LoadPrompt(providers.ArticleTech)
		require.NoError(t, err)
		assert.Equal(t, "自定义模板：{content}", tpl)
	})

	t.Run("Missing Template File", func(t *testing.T) {
		cfg := &Config{PromptDir: t.TempDir()}
		_, err := cfg.LoadPrompt(providers.ArticleTech)
		require.Error(t, err)
		assert.Equal(t, providers.ErrCodeConfig, providers.CodeOf(err))
	})

	t.Run("Unknown Article Type", func(t *testing.T) {
		cfg := &Config{}
		_, err := cfg.LoadPrompt(providers.ArticleType("news"))
		require.Error(t, err)
		assert.Equal(t, providers.ErrCodeConfig, providers.CodeOf(err))
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("Marker Replaced", func(t *testing.T) {
		assert.Equal(t, "前缀 正文 后缀", BuildPrompt("前缀 {content} 后缀", "正文"))
	})

	t.Run("No Marker Appends", func(t *testing.T) {
		assert.Equal(t, "模板\n\n正文", BuildPrompt("模板", "正文"))
	})
}

func TestTermsFor(t *testing.T) {
	cfg := &Config{ProtectedTerms: map[string][]string{
		"tech": {"API"},
	}}
	assert.Equal(t, []string{"API"}, cfg.TermsFor(providers.ArticleTech))
	assert.Nil(t, cfg.TermsFor(providers.ArticleInsurance))

	var empty Config
	assert.Nil(t, empty.TermsFor(providers.ArticleTech))
}
