// Package binding 解析版式元信息中的 ${path} 占位符，并从简历数据中取值。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 占位符形如 ${header.name} 或带默认值的 ${header.title|Resume}。
var exprPattern = regexp.MustCompile(`\$\{([^}|]*)(?:\|([^}]*))?\}`)

// Interpolate 将文本中的占位符替换为 data 中的值。
// 路径不存在或取到空值时使用默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		fallback, hasFallback := groups[2], strings.Contains(match, "|")
		if path != "" && data != nil {
			if val, ok := resolvePath(data, path); ok {
				if s := format(val); s != "" {
					return s
				}
			}
		}
		if hasFallback {
			return strings.TrimSpace(fallback)
		}
		return match
	})
}

// Paths 按出现顺序返回文本中引用的全部路径。
func Paths(text string) []string {
	var out []string
	for _, m := range exprPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Check 校验占位符语法：未闭合的 ${ 与空路径都会报错。
func Check(text string) error {
	rest := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.TrimSpace(exprPattern.FindStringSubmatch(match)[1]) == "" {
			return "\x00"
		}
		return ""
	})
	if strings.Contains(rest, "\x00") {
		return fmt.Errorf("binding: %q 含有空路径的占位符", text)
	}
	if strings.Contains(rest, "${") {
		return fmt.Errorf("binding: %q 含有未闭合的占位符", text)
	}
	for _, path := range Paths(text) {
		for _, seg := range strings.Split(path, ".") {
			if _, _, err := parseSegment(seg); err != nil {
				return fmt.Errorf("binding: %q: %w", text, err)
			}
		}
	}
	return nil
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.Join(strings.Fields(v), " ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, err := parseSegment(segment)
		if err != nil {
			return nil, false
		}
		if name != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseSegment 拆分 experience[0] 这样的路径段。
func parseSegment(segment string) (string, []int, error) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return segment, nil, nil
	}
	var indexes []int
	rest = "[" + rest
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, fmt.Errorf("路径段 %q 的下标格式错误", segment)
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("路径段 %q 的下标不是整数", segment)
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, nil
}
