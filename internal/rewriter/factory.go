package rewriter

import (
	"fmt"
	"time"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/config"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/claude"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/openai"
)

// NewBackend 根据配置构建改写后端。mode为local走Ollama，
// 为api时按providerName（默认取配置）选择远端提供商。
// 所有密钥在这里从已解析的配置里显式取出，提供商不读环境。
func NewBackend(cfg *config.Config, mode, providerName string) (providers.Rewriter, error) {
	switch mode {
	case "local":
		return newOllamaBackend(cfg), nil
	case "api":
		if providerName == "" {
			providerName = cfg.API.Provider
		}
		return newAPIBackend(cfg, providerName)
	default:
		return nil, providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("unsupported rewrite mode: %s", mode))
	}
}

func newOllamaBackend(cfg *config.Config) providers.Rewriter {
	oc := ollama.DefaultConfig()
	if cfg.Local.Model != "" {
		oc.Model = cfg.Local.Model
	}
	if cfg.Local.BaseURL != "" {
		oc.APIEndpoint = cfg.Local.BaseURL
	}
	if cfg.Local.Temperature > 0 {
		oc.Temperature = float32(cfg.Local.Temperature)
	}
	if cfg.Local.MaxTokens > 0 {
		oc.MaxTokens = cfg.Local.MaxTokens
	}
	if cfg.Local.TimeoutSeconds > 0 {
		oc.Timeout = time.Duration(cfg.Local.TimeoutSeconds) * time.Second
	}
	if len(cfg.Local.ReasoningTags) == 2 {
		oc.ReasoningTags = cfg.Local.ReasoningTags
	}
	return ollama.New(oc)
}

func newAPIBackend(cfg *config.Config, providerName string) (providers.Rewriter, error) {
	timeout := 5 * time.Minute
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	switch providerName {
	case "openai":
		oc := openai.DefaultConfig()
		applyAPIConfig(&oc, cfg.API.OpenAI, timeout)
		return openai.New(oc)
	case "qwen":
		qc := openai.QwenConfig()
		applyAPIConfig(&qc, cfg.API.Qwen, timeout)
		return openai.New(qc)
	case "claude":
		cc := claude.DefaultConfig()
		cc.Timeout = timeout
		if key := resolvedKey(cfg.API.Claude.APIKey); key != "" {
			cc.APIKey = key
		}
		if cfg.API.Claude.BaseURL != "" {
			cc.APIEndpoint = cfg.API.Claude.BaseURL
		}
		if cfg.API.Claude.Model != "" {
			cc.Model = cfg.API.Claude.Model
		}
		return claude.New(cc)
	default:
		return nil, providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("unsupported API provider: %s", providerName))
	}
}

func applyAPIConfig(oc *openai.Config, pc config.APIProviderConfig, timeout time.Duration) {
	oc.Timeout = timeout
	if key := resolvedKey(pc.APIKey); key != "" {
		oc.APIKey = key
	}
	if pc.BaseURL != "" && !config.IsEnvRef(pc.BaseURL) {
		oc.APIEndpoint = pc.BaseURL
	}
	if pc.Model != "" {
		oc.Model = pc.Model
	}
}

// resolvedKey 过滤掉未解析的 ${VAR} 引用，让缺失的密钥
// 在提供商构造时报出统一的配置错误
func resolvedKey(key string) string {
	if config.IsEnvRef(key) {
		return ""
	}
	return key
}
