package rewriter

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-rewriter-agent/pkg/providers"
)

// BatchItem 批量处理中单个文件的结果
type BatchItem struct {
	InputPath  string
	OutputPath string
	Result     *Result
	Err        error
}

// BatchResult 批量处理汇总
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
}

// ProgressFunc 批量进度回调，done从1开始计数
type ProgressFunc func(done, total int, item BatchItem)

// RewriteBatch 按glob模式批量改写文件，输出到outputDir下的同名文件。
// 单个文件失败不会中止整批，失败按条目记录并汇总返回。
func (e *Engine) RewriteBatch(ctx context.Context, pattern, outputDir string, opts Options, progress ProgressFunc) (*BatchResult, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, providers.WrapError(providers.ErrCodeConfig,
			fmt.Sprintf("invalid file pattern: %s", pattern), err)
	}
	if len(files) == 0 {
		return nil, providers.NewError(providers.ErrCodeConfig,
			fmt.Sprintf("no files matched pattern: %s", pattern))
	}

	batch := &BatchResult{Items: make([]BatchItem, 0, len(files))}
	for i, inputPath := range files {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		item := BatchItem{
			InputPath:  inputPath,
			OutputPath: filepath.Join(outputDir, filepath.Base(inputPath)),
		}
		item.Result, item.Err = e.RewriteFile(ctx, inputPath, item.OutputPath, opts)
		if item.Err != nil {
			batch.Failed++
			e.logger.Error("处理文件失败", zap.String("file", inputPath), zap.Error(item.Err))
		} else {
			batch.Succeeded++
		}

		batch.Items = append(batch.Items, item)
		if progress != nil {
			progress(i+1, len(files), item)
		}
	}
	return batch, nil
}
