package layout

import (
	"math"
	"strings"
	"unicode"
)

// WrapText 使用贪心算法折行：优先在空白处断开，单个词超过宽度时按字符强制拆分。
// measure 返回字符串在当前样式下的宽度（mm）；width<=0 表示不限宽。
// 行首空白被丢弃、行尾空白被裁掉；显式换行总是开启新行。
// 除单个字符本身超宽外，返回的每一行宽度都不超过 width。
func WrapText(content string, width float64, measure func(string) float64) []TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []TextLine
	var builder strings.Builder

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, TextLine{Content: "", Width: 0})
			}
			return
		}
		str := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		lines = append(lines, TextLine{Content: str, Width: measure(str)})
		builder.Reset()
	}

	for _, token := range tokenizeContent(content) {
		if token == "\n" {
			emit(true)
			continue
		}
		if isSpaceToken(token) {
			if builder.Len() > 0 {
				builder.WriteString(token)
			}
			continue
		}
		if builder.Len() > 0 && measure(builder.String()+token) > limit {
			emit(false)
		}
		if measure(token) <= limit {
			builder.WriteString(token)
			continue
		}
		// 超宽词：强制拆分，最后一段留在当前行，后续词仍可接在其后。
		chunks := splitTokenByWidth(token, limit, measure)
		for i, chunk := range chunks {
			if i == len(chunks)-1 {
				builder.WriteString(chunk)
				break
			}
			builder.WriteString(chunk)
			emit(false)
		}
	}

	emit(true)
	return lines
}

func isSpaceToken(token string) bool {
	for _, r := range token {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return token != ""
}

// tokenizeContent 把文本切成交替的空白段与非空白段，换行单独成为 "\n"。
func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure func(string) float64) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		if builder.Len() > 0 && measure(builder.String()+string(r)) > limit {
			parts = append(parts, builder.String())
			builder.Reset()
		}
		builder.WriteRune(r)
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
