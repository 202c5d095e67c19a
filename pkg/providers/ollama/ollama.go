package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers/retry"
)

// Config Ollama配置
type Config struct {
	providers.BaseConfig
	Model       string       `json:"model"`
	Temperature float32      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	RetryConfig retry.Config `json:"retry_config"`
	// ReasoningTags 推理模型的思考标记对（如 ["<think>", "</think>"]），
	// 改写结果中这些标记及其内容会被剔除
	ReasoningTags []string `json:"reasoning_tags,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	base := providers.DefaultConfig()
	base.Timeout = 300 * time.Second
	return Config{
		BaseConfig:    base,
		Model:         "qwen2.5:14b",
		Temperature:   0.7,
		MaxTokens:     4000,
		RetryConfig:   retry.DefaultConfig(),
		ReasoningTags: []string{"<think>", "</think>"},
	}
}

// Provider 本地模型改写提供商（基于Ollama）
type Provider struct {
	config      Config
	httpClient  *http.Client
	retryClient *retry.Retrier
}

// New 创建新的Ollama提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "http://localhost:11434"
	}
	if config.Timeout <= 0 {
		config.Timeout = 300 * time.Second
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	return &Provider{
		config:      config,
		httpClient:  httpClient,
		retryClient: retry.Wrap(httpClient, config.RetryConfig),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "ollama"
}

// IsAvailable 检查Ollama服务是否可达
func (p *Provider) IsAvailable(ctx context.Context) bool {
	tags, err := p.listModels(ctx)
	return err == nil && tags != nil
}

// ModelInstalled 检查配置的模型是否已下载
func (p *Provider) ModelInstalled(ctx context.Context) (bool, error) {
	tags, err := p.listModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range tags.Models {
		if m.Name == p.config.Model {
			return true, nil
		}
	}
	return false, nil
}

// HealthCheck 健康检查：服务可达且模型已安装
func (p *Provider) HealthCheck(ctx context.Context) error {
	installed, err := p.ModelInstalled(ctx)
	if err != nil {
		return providers.WrapError(providers.ErrCodeUnavailable,
			"Ollama service is not reachable, start it with `ollama serve`", err)
	}
	if !installed {
		return providers.NewError(providers.ErrCodeUnavailable,
			fmt.Sprintf("model %q is not installed, pull it with `ollama pull %s`", p.config.Model, p.config.Model))
	}
	return nil
}

// Rewrite 使用本地模型执行改写
func (p *Provider) Rewrite(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Prompt) == "" {
		return nil, providers.ErrEmptyText
	}
	if err := p.HealthCheck(ctx); err != nil {
		return nil, err
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = fmt.Sprintf("请在保留原意的前提下改写下面这篇%s文章，降低与原文的文字相似度：\n\n%s",
			articleTypeName(req.ArticleType), req.Text)
	}

	generateReq := GenerateRequest{
		Model:  p.config.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": p.config.Temperature,
		},
	}
	if p.config.MaxTokens > 0 {
		generateReq.Options["num_predict"] = p.config.MaxTokens
	}

	resp, err := p.generate(ctx, generateReq)
	if err != nil {
		if retry.IsTimeoutError(err) {
			return nil, providers.WrapError(providers.ErrCodeTimeout,
				"request timed out, the article may be too long, try splitting it", err)
		}
		return nil, err
	}

	text := strings.TrimSpace(resp.Response)
	text = strings.TrimSpace(p.stripReasoning(text))
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResult, "model returned empty content")
	}

	return &providers.Response{
		Text:      text,
		Model:     resp.Model,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
		Metadata: map[string]interface{}{
			"total_duration": resp.TotalDuration,
			"eval_duration":  resp.EvalDuration,
		},
	}, nil
}

// stripReasoning 剔除推理模型输出中的思考过程
func (p *Provider) stripReasoning(text string) string {
	if len(p.config.ReasoningTags) != 2 {
		return text
	}
	openTag, closeTag := p.config.ReasoningTags[0], p.config.ReasoningTags[1]
	if openTag == "" || closeTag == "" {
		return text
	}
	re, err := regexp.Compile(`(?s)` + regexp.QuoteMeta(openTag) + `.*?` + regexp.QuoteMeta(closeTag))
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "")
}

// listModels 查询已安装的模型列表
func (p *Provider) listModels(ctx context.Context) (*TagsResponse, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(probeCtx, http.MethodGet,
		p.config.APIEndpoint+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status from ollama: %s", resp.Status)
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}
	return &tags, nil
}

// generate 执行生成请求
func (p *Provider) generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
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
		var apiErr APIError
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.ErrorMsg != "" {
			return nil, providers.WrapError(providers.ErrCodeAPI, "ollama generate failed", &apiErr)
		}
		return nil, providers.NewError(providers.ErrCodeAPI,
			fmt.Sprintf("ollama generate failed: %s", resp.Status))
	}

	var generateResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &generateResp, nil
}

// articleTypeName 文章类型的中文名，用于默认提示词
func articleTypeName(t providers.ArticleType) string {
	if t == providers.ArticleInsurance {
		return "保险"
	}
	return "技术"
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Response        string    `json:"response"`
	Done            bool      `json:"done"`
	TotalDuration   int64     `json:"total_duration"`
	PromptEvalCount int       `json:"prompt_eval_count"`
	EvalCount       int       `json:"eval_count"`
	EvalDuration    int64     `json:"eval_duration"`
}

// TagsResponse 模型列表响应
type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelInfo 模型信息
type ModelInfo struct {
	Name string `json:"name"`
}

// APIError API错误
type APIError struct {
	ErrorMsg string `json:"error"`
}

func (e *APIError) Error() string {
	return e.ErrorMsg
}
