package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/retry"
	openai "github.com/sashabaranov/go-openai"
)

// 默认的系统提示词
const defaultSystemPrompt = "你是一位专业的内容改写专家。"

// Config OpenAI兼容API配置。通义千问等兼容端点通过APIEndpoint切换
type Config struct {
	providers.BaseConfig
	Model        string  `json:"model"`
	Temperature  float32 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	// Name 用于日志与错误信息的提供商名称（openai / qwen 等）
	Name string `json:"name,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   4000,
		Name:        "openai",
	}
}

// QwenConfig 返回通义千问兼容模式的默认配置
func QwenConfig() Config {
	cfg := DefaultConfig()
	cfg.Name = "qwen"
	cfg.Model = "qwen-plus"
	cfg.APIEndpoint = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	return cfg
}

// Provider OpenAI兼容API改写提供商
type Provider struct {
	config Config
	client *openai.Client
}

// New 创建新的OpenAI提供商。密钥由编排层解析后显式传入
func New(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("%s API key is required, set it in the config file or environment", config.name()))
	}

	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.APIEndpoint != "" {
		clientCfg.BaseURL = config.APIEndpoint
	}
	clientCfg.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return p.config.name()
}

// HealthCheck 健康检查：列出模型以验证密钥与端点
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return providers.WrapError(providers.ErrCodeUnavailable,
			fmt.Sprintf("%s API is not reachable", p.config.name()), err)
	}
	return nil
}

// Rewrite 使用远端API执行改写
func (p *Provider) Rewrite(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Prompt) == "" {
		return nil, providers.ErrEmptyText
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Text
	}

	systemPrompt := p.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResult, "API returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResult, "API returned empty content")
	}

	return &providers.Response{
		Text:      text,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Metadata: map[string]interface{}{
			"finish_reason": string(resp.Choices[0].FinishReason),
			"id":            resp.ID,
		},
	}, nil
}

// classifyError 把客户端错误映射到统一的错误分类
func (p *Provider) classifyError(err error) error {
	if retry.IsTimeoutError(err) {
		return providers.WrapError(providers.ErrCodeTimeout,
			"request timed out, the article may be too long, try splitting it", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden {
			return providers.WrapError(providers.ErrCodeConfig,
				fmt.Sprintf("%s API rejected the credentials", p.config.name()), err)
		}
		if apiErr.HTTPStatusCode >= 500 {
			return providers.WrapError(providers.ErrCodeUnavailable,
				fmt.Sprintf("%s API is unavailable", p.config.name()), err)
		}
		return providers.WrapError(providers.ErrCodeAPI,
			fmt.Sprintf("%s API call failed", p.config.name()), err)
	}

	return providers.WrapError(providers.ErrCodeNetwork,
		fmt.Sprintf("failed to reach %s API", p.config.name()), err)
}

func (c Config) name() string {
	if c.Name != "" {
		return c.Name
	}
	return "openai"
}
