package latex

import (
	"strings"
)

// specials 覆盖 LaTeX 文本模式下全部有特殊含义的字符，单次替换避免重复转义。
var specials = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	`|`, `\textbar{}`,
	"•", `\textbullet{}`,
	"\t", " ",
)

// Escape 转义单行文本中的 LaTeX 特殊字符。
func Escape(s string) string {
	return specials.Replace(s)
}

// paragraphs 把多行文本转为 LaTeX 段落：空行分段，段内换行使用 \\。
func paragraphs(s string) string {
	var groups []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			groups = append(groups, strings.Join(current, " \\\\\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, Escape(line))
	}
	flush()
	return strings.Join(groups, "\n\n")
}
