package layout

import (
	"encoding/json"
	"fmt"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/resume"
)

// Role 表示文本在简历中的用途，每种用途对应一个 TextStyle。
type Role string

const (
	RoleName     Role = "name"
	RoleTitle    Role = "title"
	RoleContact  Role = "contact"
	RoleHeading  Role = "heading"
	RoleBody     Role = "body"
	RoleEmphasis Role = "emphasis"
	RoleItalic   Role = "italic"
)

// Roles 列出所有需要样式的用途。
var Roles = []Role{RoleName, RoleTitle, RoleContact, RoleHeading, RoleBody, RoleEmphasis, RoleItalic}

// TextStyle 描述一次测量/绘制所需的全部样式：字体（含字重与倾斜）、字号、行高与颜色。
// 字号与行高单位均为 mm。
type TextStyle struct {
	Font       FontResource `json:"font"`
	Size       float64      `json:"size"`
	LineHeight float64      `json:"lineHeight"`
	Color      Color        `json:"color"`
}

// Spacing 汇总版式中的固定间距（mm）。
type Spacing struct {
	SectionGap   float64 `json:"sectionGap"`
	EntryGap     float64 `json:"entryGap"`
	HeaderGap    float64 `json:"headerGap"`
	RuleGap      float64 `json:"ruleGap"`   // 标题底部到分隔线
	RuleAfter    float64 `json:"ruleAfter"` // 分隔线到正文
	RuleWidth    float64 `json:"ruleWidth"`
	RuleColor    Color   `json:"ruleColor"`
	RowGap       float64 `json:"rowGap"`
	ColumnGap    float64 `json:"columnGap"`
	Bullet       string  `json:"bullet"`
	BulletIndent float64 `json:"bulletIndent"`
}

// Profile 是一份完整的版式配置：纸张、边距、字体、样式、间距、段落标题与元信息模板。
type Profile struct {
	Name     string                    `json:"name"`
	PageSize string                    `json:"pageSize"`
	Width    float64                   `json:"width"`
	Height   float64                   `json:"height"`
	Margin   Margin                    `json:"margin"`
	Fonts    map[string]FontResource   `json:"fonts"`
	Styles   map[Role]TextStyle        `json:"styles"`
	Spacing  Spacing                   `json:"spacing"`
	Labels   map[resume.Section]string `json:"labels"`
	Meta     DocumentMeta              `json:"meta"` // 可包含 ${header.name} 等占位符
}

// PagePresets 为支持的纸张尺寸（mm，纵向）。
var PagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// DefaultProfile 返回内置的经典版式：A4、18mm 边距、Latin Modern 字体。
func DefaultProfile() *Profile {
	body := FontResource{Name: "Body", Src: "embed:lmroman10-regular", Family: "Latin Modern Roman", Style: "regular"}
	bold := FontResource{Name: "Bold", Src: "embed:lmroman10-bold", Family: "Latin Modern Roman", Style: "bold"}
	italic := FontResource{Name: "Italic", Src: "embed:lmroman10-italic", Family: "Latin Modern Roman", Style: "italic"}
	ink := Color{R: 30, G: 30, B: 30}
	style := func(font FontResource, sizePt, factor float64, c Color) TextStyle {
		size := sizePt * PtToMm
		return TextStyle{Font: font, Size: size, LineHeight: size * factor, Color: c}
	}
	return &Profile{
		Name:     "classic",
		PageSize: "A4",
		Width:    210,
		Height:   297,
		Margin:   Margin{Top: 18, Right: 18, Bottom: 18, Left: 18},
		Fonts:    map[string]FontResource{body.Name: body, bold.Name: bold, italic.Name: italic},
		Styles: map[Role]TextStyle{
			RoleName:     style(bold, 20, 1.2, ink),
			RoleTitle:    style(body, 12, 1.3, Color{R: 85, G: 85, B: 85}),
			RoleContact:  style(body, 9.5, 1.3, ink),
			RoleHeading:  style(bold, 11.5, 1.2, ink),
			RoleBody:     style(body, 10, 1.3, ink),
			RoleEmphasis: style(bold, 10.5, 1.3, ink),
			RoleItalic:   style(italic, 10, 1.3, ink),
		},
		Spacing: Spacing{
			SectionGap:   5,
			EntryGap:     3,
			HeaderGap:    1,
			RuleGap:      1,
			RuleAfter:    2,
			RuleWidth:    0.3,
			RuleColor:    Color{R: 0, G: 0, B: 0},
			RowGap:       0.5,
			ColumnGap:    4,
			Bullet:       "•",
			BulletIndent: 5,
		},
		Labels: map[resume.Section]string{
			resume.SectionSummary:    "Summary",
			resume.SectionSkills:     "Skills",
			resume.SectionExperience: "Experience",
			resume.SectionEducation:  "Education",
			resume.SectionLanguages:  "Languages",
		},
		Meta: DocumentMeta{
			Title:   "${header.name}",
			Author:  "${header.name}",
			Subject: "Resume",
			Creator: "folio",
		},
	}
}

// Clone 深拷贝配置，便于在默认值上叠加修改。
func (p *Profile) Clone() *Profile {
	out := *p
	out.Fonts = make(map[string]FontResource, len(p.Fonts))
	for k, v := range p.Fonts {
		out.Fonts[k] = v
	}
	out.Styles = make(map[Role]TextStyle, len(p.Styles))
	for k, v := range p.Styles {
		out.Styles[k] = v
	}
	out.Labels = make(map[resume.Section]string, len(p.Labels))
	for k, v := range p.Labels {
		out.Labels[k] = v
	}
	out.Meta.Keywords = append([]string(nil), p.Meta.Keywords...)
	return &out
}

// ContentWidth 返回左右边距之间的宽度。
func (p *Profile) ContentWidth() float64 {
	return p.Width - p.Margin.Left - p.Margin.Right
}

// Label 返回段落标题，未配置时回退为段落名。
func (p *Profile) Label(s resume.Section) string {
	if l, ok := p.Labels[s]; ok && l != "" {
		return l
	}
	return s.String()
}

// Check 校验配置是否可用于排版。
func (p *Profile) Check() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", p.Width, p.Height)
	}
	if p.ContentWidth() <= 0 {
		return fmt.Errorf("layout: 左右边距之和超过页面宽度")
	}
	if p.Height-p.Margin.Top-p.Margin.Bottom <= 0 {
		return fmt.Errorf("layout: 上下边距之和超过页面高度")
	}
	for _, role := range Roles {
		st, ok := p.Styles[role]
		if !ok {
			return fmt.Errorf("layout: 缺少 %s 样式", role)
		}
		if st.Size <= 0 {
			return fmt.Errorf("layout: %s 样式字号无效", role)
		}
	}
	return nil
}

// ResolveMeta 将元信息模板中的 ${...} 占位符替换为文档中的值。
func ResolveMeta(p *Profile, doc *resume.Document) DocumentMeta {
	data := modelData(doc)
	meta := DocumentMeta{
		Title:   binding.Interpolate(p.Meta.Title, data),
		Author:  binding.Interpolate(p.Meta.Author, data),
		Subject: binding.Interpolate(p.Meta.Subject, data),
		Creator: binding.Interpolate(p.Meta.Creator, data),
	}
	for _, k := range p.Meta.Keywords {
		meta.Keywords = append(meta.Keywords, binding.Interpolate(k, data))
	}
	return meta
}

// modelData 把文档转成通用 map，供占位符按路径取值。
func modelData(doc *resume.Document) any {
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}
