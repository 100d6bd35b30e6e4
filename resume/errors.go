package resume

import (
	"errors"
	"fmt"
)

// ErrMalformed 表示文档模型缺少必填字段或结构不合法，调用方可据此决定重新生成或展示兜底内容。
var ErrMalformed = errors.New("resume: malformed document model")

// MalformedError 记录具体出错的字段。
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrMalformed, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", ErrMalformed, e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformed(field, reason string) error {
	return &MalformedError{Field: field, Reason: reason}
}
