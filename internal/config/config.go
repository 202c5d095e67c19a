package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LocalConfig 本地模型（Ollama）配置
type LocalConfig struct {
	Model          string   `mapstructure:"model"`
	BaseURL        string   `mapstructure:"base_url"`
	Temperature    float64  `mapstructure:"temperature"`
	MaxTokens      int      `mapstructure:"max_tokens"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"` // 改写请求超时（秒）
	ReasoningTags  []string `mapstructure:"reasoning_tags"`  // 推理模型的思考标记对
}

// APIProviderConfig 单个远端API提供商的配置
type APIProviderConfig struct {
	APIKey  string `mapstructure:"api_key"` // 支持 ${ENV_VAR} 形式引用环境变量
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// APIConfig 远端API配置
type APIConfig struct {
	Provider string            `mapstructure:"provider"` // openai / claude / qwen
	OpenAI   APIProviderConfig `mapstructure:"openai"`
	Claude   APIProviderConfig `mapstructure:"claude"`
	Qwen     APIProviderConfig `mapstructure:"qwen"`
}

// Config 保存改写工具的所有配置
type Config struct {
	Mode                string              `mapstructure:"mode"` // local / api
	Local               LocalConfig         `mapstructure:"local"`
	API                 APIConfig           `mapstructure:"api"`
	ProtectedTerms      map[string][]string `mapstructure:"protected_terms"` // 按文章类型分组的术语表
	PromptDir           string              `mapstructure:"prompt_dir"`      // 提示词模板目录，空则用内置模板
	PreserveCode        bool                `mapstructure:"preserve_code"`
	SimilarityThreshold float64             `mapstructure:"similarity_threshold"`
	RequestTimeout      int                 `mapstructure:"request_timeout"` // 秒
	Debug               bool                `mapstructure:"debug"`
}

// LoadConfig 从文件加载配置。configPath为空时在当前目录与家目录
// 查找 .rewriter.yaml，找不到就全部使用默认值。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.SetConfigName(".rewriter")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvPrefix("REWRITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		// 未显式指定时允许没有配置文件
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.resolveEnv()
	return &config, nil
}

// resolveEnv 展开 ${ENV_VAR} 形式的密钥与端点引用。
// 秘密只在这里解析一次，后面全部显式传递，不再读全局状态。
func (c *Config) resolveEnv() {
	for _, p := range []*APIProviderConfig{&c.API.OpenAI, &c.API.Claude, &c.API.Qwen} {
		p.APIKey = expandEnvRef(p.APIKey)
		p.BaseURL = expandEnvRef(p.BaseURL)
	}
}

// expandEnvRef 把 "${NAME}" 替换成环境变量值；变量未设置时保留原样，
// 让后续的配置校验能报出可读的错误。
func expandEnvRef(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	name := value[2 : len(value)-1]
	if resolved, ok := os.LookupEnv(name); ok {
		return resolved
	}
	return value
}

// IsEnvRef 判断值是否仍是未解析的环境变量引用
func IsEnvRef(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

// setDefaults 设置默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "local")
	v.SetDefault("preserve_code", true)
	v.SetDefault("similarity_threshold", 0.3)
	v.SetDefault("request_timeout", 300)

	v.SetDefault("local.model", "qwen2.5:14b")
	v.SetDefault("local.base_url", "http://localhost:11434")
	v.SetDefault("local.temperature", 0.7)
	v.SetDefault("local.max_tokens", 4000)
	v.SetDefault("local.timeout_seconds", 300)
	v.SetDefault("local.reasoning_tags", []string{"<think>", "</think>"})

	v.SetDefault("api.provider", "openai")
	v.SetDefault("api.openai.model", "gpt-4o")
	v.SetDefault("api.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("api.claude.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("api.claude.api_key", "${CLAUDE_API_KEY}")
	v.SetDefault("api.qwen.model", "qwen-plus")
	v.SetDefault("api.qwen.api_key", "${QWEN_API_KEY}")
	v.SetDefault("api.qwen.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")

	v.SetDefault("protected_terms.tech", []string{
		"API", "Docker", "Kubernetes", "Redis", "MySQL", "Nginx", "Git", "Linux",
	})
	v.SetDefault("protected_terms.insurance", []string{
		"保险金", "保单", "被保险人", "投保人", "免赔额", "现金价值", "犹豫期",
	})
}
