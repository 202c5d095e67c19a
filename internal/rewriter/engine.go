// Package rewriter 编排一次完整的改写往返：
// 抽取文本 → 术语保护 → 调用改写后端 → 术语还原 → 结构还原。
package rewriter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-rewriter-agent/internal/config"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/htmldoc"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/markdown"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/similarity"
	"github.com/nerdneilsfield/go-rewriter-agent/pkg/terms"
)

// Options 一次改写的运行选项
type Options struct {
	ArticleType providers.ArticleType
	// PreserveHTML 输入本身是HTML时走结构保持路径，否则走启发式合成
	PreserveHTML bool
	// CheckSimilarity 改写后做词面相似度评估
	CheckSimilarity bool
}

// Result 一次改写的产出
type Result struct {
	RunID            string
	OriginalText     string // 抽取出的原始纯文本
	RewrittenText    string // 改写后的纯文本（术语已还原）
	HTML             string // 还原后的最终HTML
	TermReport       *terms.Report
	SimilarityReport *similarity.Report
	Provider         string
	Model            string
}

// Engine 改写引擎。Engine本身可跨文档复用；
// 每篇文档内部都会新建自己的Processor与Protector实例。
type Engine struct {
	cfg     *config.Config
	backend providers.Rewriter
	checker *similarity.Checker
	logger  *zap.Logger
}

// NewEngine 创建改写引擎
func NewEngine(cfg *config.Config, backend providers.Rewriter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		backend: backend,
		checker: similarity.NewChecker(cfg.SimilarityThreshold),
		logger:  logger,
	}
}

// Backend 返回当前使用的改写后端
func (e *Engine) Backend() providers.Rewriter {
	return e.backend
}

// RewriteContent 改写一篇文章内容并返回还原后的HTML
func (e *Engine) RewriteContent(ctx context.Context, content string, opts Options) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, providers.ErrEmptyText
	}
	if !opts.ArticleType.Valid() {
		return nil, providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("unsupported article type: %s", opts.ArticleType))
	}

	runID := uuid.NewString()
	log := e.logger.With(zap.String("run_id", runID), zap.String("provider", e.backend.GetName()))

	proc := htmldoc.NewProcessor(e.cfg.PreserveCode, log)
	text, err := proc.ExtractText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	log.Info("提取纯文本完成", zap.Int("chars", len([]rune(text))),
		zap.Int("code_blocks", len(proc.CodeBlocks())))

	protector := terms.NewProtector(e.cfg.TermsFor(opts.ArticleType))
	protected := protector.Protect(text)

	tpl, err := e.cfg.LoadPrompt(opts.ArticleType)
	if err != nil {
		return nil, err
	}

	log.Info("开始改写", zap.String("article_type", string(opts.ArticleType)))
	resp, err := e.backend.Rewrite(ctx, &providers.Request{
		Text:        protected,
		ArticleType: opts.ArticleType,
		Prompt:      config.BuildPrompt(tpl, protected),
	})
	if err != nil {
		return nil, err
	}

	rewritten := protector.Restore(strings.TrimSpace(resp.Text))

	var finalHTML string
	if opts.PreserveHTML && strings.HasPrefix(strings.TrimSpace(content), "<") {
		finalHTML, err = proc.RestoreHTML(content, rewritten)
		if err != nil {
			return nil, fmt.Errorf("failed to restore HTML: %w", err)
		}
	} else {
		finalHTML = proc.SimpleRestore(rewritten)
	}

	result := &Result{
		RunID:         runID,
		OriginalText:  text,
		RewrittenText: rewritten,
		HTML:          finalHTML,
		Provider:      e.backend.GetName(),
		Model:         resp.Model,
	}

	termReport := protector.Verify(text, rewritten)
	result.TermReport = &termReport
	if !termReport.Protected {
		log.Warn("改写后有术语丢失",
			zap.Strings("missing_terms", termReport.MissingTerms),
			zap.Strings("extra_terms", termReport.ExtraTerms))
	}

	if opts.CheckSimilarity {
		simReport := e.checker.CheckQuality(text, rewritten)
		result.SimilarityReport = &simReport
	}

	log.Info("改写完成", zap.String("model", resp.Model),
		zap.Int("tokens_in", resp.TokensIn), zap.Int("tokens_out", resp.TokensOut))
	return result, nil
}

// RewriteFile 读取输入文件、改写、写出结果。
// Markdown输入先渲染成HTML，走与HTML文章相同的管线。
func (e *Engine) RewriteFile(ctx context.Context, inputPath, outputPath string, opts Options) (*Result, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, providers.WrapError(providers.ErrCodeConfig,
			fmt.Sprintf("failed to read input file %s", inputPath), err)
	}

	content := string(data)
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".md", ".markdown":
		content, err = markdown.ToHTML(data)
		if err != nil {
			return nil, err
		}
	}

	result, err := e.RewriteContent(ctx, content, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(result.HTML), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return result, nil
}

// ExtractText 供check等外围命令复用的纯文本抽取
func ExtractText(content string, logger *zap.Logger) (string, error) {
	proc := htmldoc.NewProcessor(false, logger)
	return proc.ExtractText(content)
}

// Similarity 返回引擎使用的相似度检测器
func (e *Engine) Similarity() *similarity.Checker {
	return e.checker
}
