// Package generator 定义内容生成器：把用户上传的原始简历（PDF 或文本）整理成 resume.Document。
package generator

import (
	"context"
	"errors"

	"github.com/ByLCY/folio/resume"
)

// ErrNoGenerator 表示未配置内容生成器（例如缺少 API key）。
var ErrNoGenerator = errors.New("generator: 未配置内容生成器")

// ContentGenerator 负责获取文档模型，重试与超时都在实现内部处理。
type ContentGenerator interface {
	FixResume(ctx context.Context, content []byte, mimeType string) (*resume.Document, error)
}

// Func 把普通函数适配为 ContentGenerator。
type Func func(ctx context.Context, content []byte, mimeType string) (*resume.Document, error)

// FixResume implements ContentGenerator.
func (f Func) FixResume(ctx context.Context, content []byte, mimeType string) (*resume.Document, error) {
	return f(ctx, content, mimeType)
}
