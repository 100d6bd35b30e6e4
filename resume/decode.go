package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// envelopeKey 是内容生成服务返回的外层字段，文档模型位于其中。
const envelopeKey = "pdfContent"

// Decode 读取内容生成服务的 JSON 响应并返回归一化、校验过的文档模型。
// 支持去掉 ```json 代码块包裹，以及 {"latex": ..., "pdfContent": {...}} 外层结构。
func Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("resume: read model: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes 与 Decode 相同，入参为字节切片。
func DecodeBytes(raw []byte) (*Document, error) {
	body := StripCodeFence(string(raw))
	if body == "" {
		return nil, malformed("", "empty response")
	}

	var generic map[string]any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return nil, malformed("", fmt.Sprintf("invalid JSON: %v", err))
	}
	if inner, ok := generic[envelopeKey].(map[string]any); ok {
		generic = inner
	}
	if err := validateShape(generic); err != nil {
		return nil, err
	}

	// 通过 map 重新编码，保证外层结构与裸模型走同一条解码路径。
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("resume: re-encode model: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, malformed("", fmt.Sprintf("decode: %v", err))
	}
	out := Normalize(&doc)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func validateShape(m map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("resume: load schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(m))
	if err != nil {
		return malformed("", err.Error())
	}
	if res.Valid() {
		return nil
	}
	errs := res.Errors()
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	field := ""
	if len(errs) > 0 {
		field = errs[0].Field()
	}
	return malformed(field, "schema validation failed: "+strings.Join(msgs, "; "))
}

// StripCodeFence 去掉模型输出外层的 markdown 代码块标记（含 ```json 语言标注）。
// 只处理包裹整段内容的首尾标记，字段值中出现的 ``` 原样保留。
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, fence); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+len(fence):]
		s = strings.TrimLeftFunc(s, isLangTag)
		if j := strings.LastIndex(s, fence); j >= 0 && !strings.ContainsAny(s[j:], "}]") {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}

const fence = "```"

func isLangTag(r rune) bool {
	return r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
