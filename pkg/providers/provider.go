package providers

import (
	"context"
	"time"
)

// ArticleType 文章类型
type ArticleType string

const (
	// ArticleTech 技术博客
	ArticleTech ArticleType = "tech"
	// ArticleInsurance 保险文章
	ArticleInsurance ArticleType = "insurance"
)

// Valid 检查文章类型是否受支持
func (t ArticleType) Valid() bool {
	return t == ArticleTech || t == ArticleInsurance
}

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    5 * time.Minute, // 长文改写可能很慢，默认给足5分钟
		MaxRetries: 3,
		Headers:    make(map[string]string),
	}
}

// Request 改写请求
type Request struct {
	// Text 待改写的纯文本（已完成代码块与术语保护）
	Text string `json:"text"`
	// ArticleType 文章类型，影响提示词与术语表
	ArticleType ArticleType `json:"article_type"`
	// Prompt 已完成内容替换的完整提示词；为空时由提供商自行构建
	Prompt string `json:"prompt,omitempty"`
	// Metadata 附加元数据
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Response 改写响应
type Response struct {
	Text      string                 `json:"text"`
	Model     string                 `json:"model,omitempty"`
	TokensIn  int                    `json:"tokens_in,omitempty"`
	TokensOut int                    `json:"tokens_out,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Rewriter 改写后端接口，本地模型与远端API实现共用。
// 实现细节（网络调用、模型选择）全部收在接口之后。
type Rewriter interface {
	// Rewrite 执行改写
	Rewrite(ctx context.Context, req *Request) (*Response, error)

	// GetName 获取提供商名称
	GetName() string

	// HealthCheck 健康检查，服务不可达或模型缺失时返回错误
	HealthCheck(ctx context.Context) error
}
