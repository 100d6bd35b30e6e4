// Package profile 把版式文件（dsl）转换为 layout.Profile。
package profile

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/resume"
)

//go:embed classic.profile
var classicSource string

var classic = sync.OnceValues(func() (*layout.Profile, error) {
	return Load(strings.NewReader(classicSource))
})

// Default 返回内置经典版式的副本，调用方可以自由修改。
func Default() (*layout.Profile, error) {
	p, err := classic()
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Load 解析版式文件，并叠加到 layout.DefaultProfile 之上。
func Load(r io.Reader) (*layout.Profile, error) {
	ast, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析版式文件失败: %w", err)
	}
	return Apply(layout.DefaultProfile(), ast)
}

// LoadFile 读取并解析磁盘上的版式文件。
func LoadFile(path string) (*layout.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开版式文件失败: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Apply 将语法树中的设置覆盖到 base 的副本上，base 本身不变。
func Apply(base *layout.Profile, ast *dsl.Profile) (*layout.Profile, error) {
	b := &builder{
		p:      base.Clone(),
		colors: map[string]layout.Color{},
		decls:  map[string]*styleDecl{},
	}
	b.p.Name = ast.Name
	for _, sec := range ast.Sections {
		var err error
		switch {
		case sec.Meta != nil:
			err = b.meta(sec.Meta.Block)
		case sec.Resources != nil:
			err = b.resources(sec.Resources.Block)
		case sec.Page != nil:
			err = b.page(sec.Page)
		case sec.Labels != nil:
			err = b.labels(sec.Labels.Block)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := b.resolveStyles(); err != nil {
		return nil, err
	}
	if err := b.p.Check(); err != nil {
		return nil, err
	}
	return b.p, nil
}

type builder struct {
	p      *layout.Profile
	colors map[string]layout.Color
	decls  map[string]*styleDecl
	order  []string
}

// styleDecl 是一条 style 声明，继承关系在所有资源读完后统一解析。
type styleDecl struct {
	cmd     *dsl.Command
	extends string
}

// styleSpec 保留行高的原始写法，继承时按新的字号重新计算。
type styleSpec struct {
	font  layout.FontResource
	size  float64
	lh    layout.LineHeightSpec
	color layout.Color
}

func (s styleSpec) style() layout.TextStyle {
	return layout.TextStyle{Font: s.font, Size: s.size, LineHeight: s.lh.Resolve(s.size), Color: s.color}
}

func specOf(st layout.TextStyle) styleSpec {
	lh := layout.LineHeightSpec{Kind: layout.LineHeightFactor, Factor: 1.3}
	if st.Size > 0 && st.LineHeight > 0 {
		lh.Factor = st.LineHeight / st.Size
	}
	return styleSpec{font: st.Font, size: st.Size, lh: lh, color: st.Color}
}

func (b *builder) meta(block *dsl.Block) error {
	for _, a := range assignments(block) {
		if err := checkTemplate(a); err != nil {
			return err
		}
		switch a.Key {
		case "title":
			b.p.Meta.Title = a.Value.Raw()
		case "author":
			b.p.Meta.Author = a.Value.Raw()
		case "subject":
			b.p.Meta.Subject = a.Value.Raw()
		case "creator":
			b.p.Meta.Creator = a.Value.Raw()
		case "keywords":
			if a.Value.Array == nil {
				return fmt.Errorf("%s: keywords 必须是数组", a.Pos)
			}
			b.p.Meta.Keywords = b.p.Meta.Keywords[:0]
			for _, v := range a.Value.Array.Values {
				b.p.Meta.Keywords = append(b.p.Meta.Keywords, v.Raw())
			}
		default:
			return fmt.Errorf("%s: 未知的 meta 属性 %q", a.Pos, a.Key)
		}
	}
	return nil
}

// checkTemplate 校验元信息中 ${...} 占位符的语法。
func checkTemplate(a *dsl.Assignment) error {
	values := []*dsl.Value{a.Value}
	if a.Value.Array != nil {
		values = a.Value.Array.Values
	}
	for _, v := range values {
		if err := binding.Check(v.Raw()); err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
	}
	return nil
}

func (b *builder) resources(block *dsl.Block) error {
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil {
			return fmt.Errorf("%s: resources 中只能声明 font/color/style", st.Assignment.Pos)
		}
		if len(cmd.Args) == 0 {
			return fmt.Errorf("%s: %s 缺少名称", cmd.Pos, cmd.Name)
		}
		name := cmd.Args[0].Value
		switch cmd.Name {
		case "font":
			if err := b.font(name, cmd); err != nil {
				return err
			}
		case "color":
			if len(cmd.Args) != 3 || cmd.Args[1].Value != "=" {
				return fmt.Errorf("%s: 颜色声明应写作 color Name = #RRGGBB", cmd.Pos)
			}
			c, err := parseColor(cmd.Args[2].Value)
			if err != nil {
				return fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			b.colors[name] = c
		case "style":
			decl := &styleDecl{cmd: cmd}
			switch len(cmd.Args) {
			case 1:
			case 3:
				if cmd.Args[1].Value != "extends" {
					return fmt.Errorf("%s: 样式继承应写作 style name extends base", cmd.Pos)
				}
				decl.extends = cmd.Args[2].Value
			default:
				return fmt.Errorf("%s: 样式声明参数无效", cmd.Pos)
			}
			if _, dup := b.decls[name]; !dup {
				b.order = append(b.order, name)
			}
			b.decls[name] = decl
		default:
			return fmt.Errorf("%s: 未知的资源类型 %q", cmd.Pos, cmd.Name)
		}
	}
	return nil
}

func (b *builder) font(name string, cmd *dsl.Command) error {
	f := b.p.Fonts[name]
	f.Name = name
	for _, a := range assignments(cmd.Block) {
		switch a.Key {
		case "src":
			f.Src = a.Value.Raw()
		case "family":
			f.Family = a.Value.Raw()
		case "style":
			f.Style = a.Value.Raw()
		default:
			return fmt.Errorf("%s: 未知的字体属性 %q", a.Pos, a.Key)
		}
	}
	if f.Src == "" {
		return fmt.Errorf("%s: 字体 %s 缺少 src", cmd.Pos, name)
	}
	b.p.Fonts[name] = f
	return nil
}

func (b *builder) resolveStyles() error {
	done := map[string]styleSpec{}
	var resolve func(name string, chain []string) (styleSpec, error)
	resolve = func(name string, chain []string) (styleSpec, error) {
		if spec, ok := done[name]; ok {
			return spec, nil
		}
		for _, seen := range chain {
			if seen == name {
				return styleSpec{}, fmt.Errorf("样式继承出现循环: %s", strings.Join(append(chain, name), " -> "))
			}
		}
		decl, ok := b.decls[name]
		if !ok {
			if st, known := b.p.Styles[layout.Role(name)]; known {
				return specOf(st), nil
			}
			return styleSpec{}, fmt.Errorf("未定义的样式 %q", name)
		}

		var spec styleSpec
		switch {
		case decl.extends != "":
			base, err := resolve(decl.extends, append(chain, name))
			if err != nil {
				return styleSpec{}, err
			}
			spec = base
		default:
			st, known := b.p.Styles[layout.Role(name)]
			if !known {
				st = b.p.Styles[layout.RoleBody]
			}
			spec = specOf(st)
		}
		if err := b.applyStyle(&spec, decl.cmd); err != nil {
			return styleSpec{}, err
		}
		done[name] = spec
		return spec, nil
	}

	for _, name := range b.order {
		if _, err := resolve(name, nil); err != nil {
			return err
		}
	}
	for _, role := range layout.Roles {
		if spec, ok := done[string(role)]; ok {
			b.p.Styles[role] = spec.style()
		}
	}
	return nil
}

func (b *builder) applyStyle(spec *styleSpec, cmd *dsl.Command) error {
	for _, a := range assignments(cmd.Block) {
		switch a.Key {
		case "font":
			f, ok := b.p.Fonts[a.Value.Raw()]
			if !ok {
				return fmt.Errorf("%s: 未定义的字体 %q", a.Pos, a.Value.Raw())
			}
			spec.font = f
		case "size":
			l, err := layout.ParseLength(a.Value.Raw())
			if err != nil || l.ToMM() <= 0 {
				return fmt.Errorf("%s: 字号无效 %q", a.Pos, a.Value.Raw())
			}
			if l.Unit == layout.UnitNone {
				l.Unit = layout.UnitPT
			}
			spec.size = l.ToMM()
		case "line-height":
			lh, err := layout.ParseLineHeight(a.Value.Raw())
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			spec.lh = lh
		case "color":
			c, err := b.color(a.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			spec.color = c
		default:
			return fmt.Errorf("%s: 未知的样式属性 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func (b *builder) page(sec *dsl.PageSection) error {
	size := strings.ToUpper(sec.Spec.Size)
	dims, ok := layout.PagePresets[size]
	if !ok {
		return fmt.Errorf("不支持的纸张尺寸 %q", sec.Spec.Size)
	}
	width, height := dims[0], dims[1]

	params := sec.Spec.Params
	for i := 0; i < len(params); i++ {
		switch strings.ToLower(params[i].Value) {
		case "portrait":
		case "landscape":
			width, height = height, width
		case "margin":
			var vals []float64
			for i+1 < len(params) && len(vals) < 4 {
				l, err := layout.ParseLength(params[i+1].Value)
				if err != nil {
					break
				}
				vals = append(vals, l.ToMM())
				i++
			}
			m, err := marginOf(vals)
			if err != nil {
				return fmt.Errorf("%s: %w", params[i].Pos, err)
			}
			b.p.Margin = m
		default:
			return fmt.Errorf("%s: 未知的页面参数 %q", params[i].Pos, params[i].Value)
		}
	}
	b.p.PageSize = size
	b.p.Width, b.p.Height = width, height

	if sec.Block == nil {
		return nil
	}
	sp := &b.p.Spacing
	lengths := map[string]*float64{
		"section-gap":   &sp.SectionGap,
		"entry-gap":     &sp.EntryGap,
		"header-gap":    &sp.HeaderGap,
		"rule-gap":      &sp.RuleGap,
		"rule-after":    &sp.RuleAfter,
		"rule-width":    &sp.RuleWidth,
		"row-gap":       &sp.RowGap,
		"column-gap":    &sp.ColumnGap,
		"bullet-indent": &sp.BulletIndent,
	}
	for _, a := range assignments(sec.Block) {
		if dst, ok := lengths[a.Key]; ok {
			l, err := layout.ParseLength(a.Value.Raw())
			if err != nil || l.Value < 0 {
				return fmt.Errorf("%s: %s 长度无效 %q", a.Pos, a.Key, a.Value.Raw())
			}
			*dst = l.ToMM()
			continue
		}
		switch a.Key {
		case "rule-color":
			c, err := b.color(a.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			sp.RuleColor = c
		case "bullet":
			sp.Bullet = a.Value.Raw()
		default:
			return fmt.Errorf("%s: 未知的页面属性 %q", a.Pos, a.Key)
		}
	}
	return nil
}

// marginOf 按 CSS 顺序展开 1–4 个边距值。
func marginOf(v []float64) (layout.Margin, error) {
	switch len(v) {
	case 1:
		return layout.Margin{Top: v[0], Right: v[0], Bottom: v[0], Left: v[0]}, nil
	case 2:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[0], Left: v[1]}, nil
	case 3:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[2], Left: v[1]}, nil
	case 4:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
	default:
		return layout.Margin{}, fmt.Errorf("margin 需要 1 到 4 个长度")
	}
}

func (b *builder) labels(block *dsl.Block) error {
	for _, a := range assignments(block) {
		sec, ok := sectionByName(a.Key)
		if !ok {
			return fmt.Errorf("%s: 未知的段落 %q", a.Pos, a.Key)
		}
		b.p.Labels[sec] = a.Value.Raw()
	}
	return nil
}

func sectionByName(name string) (resume.Section, bool) {
	for _, s := range resume.Sections {
		if s != resume.SectionHeader && s.String() == name {
			return s, true
		}
	}
	return 0, false
}

func (b *builder) color(v *dsl.Value) (layout.Color, error) {
	if v.Ident != nil {
		c, ok := b.colors[*v.Ident]
		if !ok {
			return layout.Color{}, fmt.Errorf("未定义的颜色 %q", *v.Ident)
		}
		return c, nil
	}
	return parseColor(v.Raw())
}

func parseColor(s string) (layout.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("颜色格式无效 %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("颜色格式无效 %q", s)
	}
	return layout.Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

func assignments(block *dsl.Block) []*dsl.Assignment {
	if block == nil {
		return nil
	}
	out := make([]*dsl.Assignment, 0, len(block.Statements))
	for _, st := range block.Statements {
		if st.Assignment != nil {
			out = append(out, st.Assignment)
		}
	}
	return out
}
