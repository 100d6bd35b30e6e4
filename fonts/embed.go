package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// 内置 Latin Modern Roman 字体，与 LaTeX 输出使用的 lmodern 为同一字族。
var builtin = map[string][]byte{
	"lmroman10-regular":    lmroman10regular.TTF,
	"lmroman10-bold":       lmroman10bold.TTF,
	"lmroman10-italic":     lmroman10italic.TTF,
	"lmroman10-bolditalic": lmroman10bolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:lmroman10-regular" 或 "lmroman10-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可用字体 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出全部内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
