package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

// ContentMarker 提示词模板中的正文占位标记
const ContentMarker = "{content}"

// 内置提示词模板。配置了 prompt_dir 后用 <type>_blog.txt 覆盖。
// 模板里明确要求模型原样保留两类占位符，这是占位符能活过改写步骤的前提。
var defaultPrompts = map[providers.ArticleType]string{
	providers.ArticleTech: `你是一位资深的技术博客作者。请改写下面这篇技术文章，要求：
1. 保留全部技术事实与逻辑结构，但用完全不同的表达方式重写每一段；
2. 段落之间用空行分隔，段落数量与原文保持一致；
3. 形如 ___CODE_BLOCK_0___ 和 ___TERM_0___ 的标记必须原样保留，不得翻译、改写或删除；
4. 只输出改写后的正文，不要任何解释。

原文：

{content}`,
	providers.ArticleInsurance: `你是一位专业的保险内容编辑。请改写下面这篇保险科普文章，要求：
1. 保险条款与数字必须准确，专业术语不得更换说法；
2. 用不同的句式与措辞重写每一段，段落之间用空行分隔，段落数量与原文一致；
3. 形如 ___CODE_BLOCK_0___ 和 ___TERM_0___ 的标记必须原样保留，不得改写或删除；
4. 只输出改写后的正文，不要任何解释。

原文：

{content}`,
}

// LoadPrompt 加载指定文章类型的提示词模板。
// 配置了模板目录但文件缺失按配置错误处理，立即返回给调用方。
func (c *Config) LoadPrompt(articleType providers.ArticleType) (string, error) {
	if c.PromptDir != "" {
		path := filepath.Join(c.PromptDir, string(articleType)+"_blog.txt")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", providers.WrapError(providers.ErrCodeConfig,
				fmt.Sprintf("prompt template %s does not exist", path), err)
		}
		return string(data), nil
	}

	tpl, ok := defaultPrompts[articleType]
	if !ok {
		return "", providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("unsupported article type: %s", articleType))
	}
	return tpl, nil
}

// BuildPrompt 把正文填入模板。模板未含占位标记时正文追加在末尾
func BuildPrompt(template, content string) string {
	if strings.Contains(template, ContentMarker) {
		return strings.ReplaceAll(template, ContentMarker, content)
	}
	return template + "\n\n" + content
}

// TermsFor 返回指定文章类型的术语表
func (c *Config) TermsFor(articleType providers.ArticleType) []string {
	if c.ProtectedTerms == nil {
		return nil
	}
	return c.ProtectedTerms[string(articleType)]
}
