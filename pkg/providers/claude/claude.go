package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/retry"
)

const anthropicVersion = "2023-06-01"

// Config Claude配置
type Config struct {
	providers.BaseConfig
	Model       string       `json:"model"`
	Temperature float32      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	RetryConfig retry.Config `json:"retry_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "claude-3-5-sonnet-20241022",
		Temperature: 0.7,
		MaxTokens:   4000,
		RetryConfig: retry.DefaultConfig(),
	}
}

// Provider Claude改写提供商，直接走Anthropic messages API
type Provider struct {
	config      Config
	retryClient *retry.Retrier
}

// New 创建新的Claude提供商
func New(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, providers.NewError(providers.ErrCodeConfig,
			"Claude API key is required, set it in the config file or environment")
	}
	if config.APIEndpoint == "" {
		config.APIEndpoint = "https://api.anthropic.com"
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	return &Provider{
		config:      config,
		retryClient: retry.Wrap(httpClient, config.RetryConfig),
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "claude"
}

// HealthCheck 健康检查：发送一个极小的生成请求验证密钥
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.message(ctx, messageRequest{
		Model:     p.config.Model,
		MaxTokens: 8,
		Messages:  []message{{Role: "user", Content: "ping"}},
	})
	if err != nil {
		return providers.WrapError(providers.ErrCodeUnavailable, "Claude API is not reachable", err)
	}
	return nil
}

// Rewrite 使用Claude执行改写
func (p *Provider) Rewrite(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Prompt) == "" {
		return nil, providers.ErrEmptyText
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Text
	}

	resp, err := p.message(ctx, messageRequest{
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		if retry.IsTimeoutError(err) {
			return nil, providers.WrapError(providers.ErrCodeTimeout,
				"request timed out, the article may be too long, try splitting it", err)
		}
		return nil, err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResult, "API returned empty content")
	}

	return &providers.Response{
		Text:      text,
		Model:     resp.Model,
		TokensIn:  resp.Usage.InputTokens,
		TokensOut: resp.Usage.OutputTokens,
		Metadata: map[string]interface{}{
			"stop_reason": resp.StopReason,
			"id":          resp.ID,
		},
	}, nil
}

// message 调用messages接口
func (p *Provider) message(ctx context.Context, req messageRequest) (*messageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.retryClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		var apiErr apiErrorEnvelope
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.Err.Message != "" {
			return nil, providers.NewError(providers.ErrCodeAPI,
				fmt.Sprintf("Claude API call failed: %s", apiErr.Err.Message))
		}
		return nil, providers.NewError(providers.ErrCodeAPI,
			fmt.Sprintf("Claude API call failed: %s", resp.Status))
	}

	var msgResp messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &msgResp, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type messageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      usage          `json:"usage"`
}

type apiErrorEnvelope struct {
	Err struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
