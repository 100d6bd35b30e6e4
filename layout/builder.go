package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/folio/resume"
)

// Build 将简历文档排版为固定尺寸的分页结果。文档只读，不会被修改；
// 排版基于 resume.Normalize 后的副本。
func Build(doc *resume.Document, opts BuildOptions) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc = resume.Normalize(doc)
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	prof := opts.Profile
	if prof == nil {
		prof = DefaultProfile()
	}
	if err := prof.Check(); err != nil {
		return nil, err
	}

	rc := &renderContext{
		doc:     doc,
		cursor:  NewCursor(prof.Width, prof.Height, prof.Margin),
		ts:      opts.Typesetter,
		profile: prof,
		x:       prof.Margin.Left,
		width:   prof.ContentWidth(),
	}

	placed := 0
	for _, sec := range sectionTable {
		if !doc.HasContent(sec.kind) {
			continue
		}
		if placed > 0 {
			rc.cursor.Advance(prof.Spacing.SectionGap)
		}
		rc.section = sec.kind
		if err := sec.render(rc); err != nil {
			return nil, fmt.Errorf("排版 %s 段落失败: %w", sec.kind, err)
		}
		placed++
	}

	fonts := make(map[string]FontResource, len(prof.Fonts))
	for name, f := range prof.Fonts {
		fonts[name] = f
	}
	for _, st := range prof.Styles {
		if _, ok := fonts[st.Font.Name]; !ok && st.Font.Name != "" {
			fonts[st.Font.Name] = st.Font
		}
	}

	return &Result{
		Pages:     rc.cursor.Pages(),
		Resources: ResourceSet{Fonts: fonts},
		Meta:      ResolveMeta(prof, doc),
	}, nil
}

// renderContext 是一次 Build 运行中段落渲染器共享的状态，游标仅属于本次运行。
type renderContext struct {
	doc     *resume.Document
	cursor  *Cursor
	ts      Typesetter
	profile *Profile
	section resume.Section
	x       float64
	width   float64
}

// composeText 测量并折行，返回坐标尚未确定的文本块（X 取内容区左侧，Y 为 0）。
func (rc *renderContext) composeText(role Role, part, content string, width float64, align string) (TextBox, error) {
	style := rc.profile.Styles[role]
	lines, err := rc.ts.LayoutLines(content, style, width)
	if err != nil {
		return TextBox{}, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0}}
	}

	totalHeight := 0.0
	defaultLeading := math.Max(style.LineHeight-style.Size, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = style.Size
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	return TextBox{
		Content:    content,
		X:          rc.x,
		Width:      width,
		LineHeight: style.LineHeight,
		Font:       style.Font.Name,
		FontSize:   style.Size,
		Color:      style.Color,
		Lines:      lines,
		Height:     totalHeight,
		Align:      align,
		Section:    rc.section.String(),
		Part:       part,
	}, nil
}

// placement 记录一次 flowText 的首块位置，供要点符号等附属元素对齐。
type placement struct {
	acc *pageAccumulator
	y   float64
}

// flowText 按行放置文本块：当前页放得下多少行就放多少，其余行在新页继续。
// 单行高度超过整页时放在新页顶部（允许越界）。
func (rc *renderContext) flowText(tb TextBox) placement {
	var first placement
	lines := tb.Lines
	for chunkIdx := 0; len(lines) > 0; chunkIdx++ {
		head := lines[0]
		head.GapBefore = 0
		rc.cursor.KeepTogether(head.Height)

		avail := rc.cursor.Remaining()
		n, height := 1, head.Height
		for n < len(lines) {
			next := height + lines[n].GapBefore + lines[n].Height
			if next > avail+epsilon {
				break
			}
			height = next
			n++
		}

		chunk := tb
		chunk.Lines = append([]TextLine{head}, lines[1:n]...)
		chunk.Height = height
		if n < len(tb.Lines) || chunkIdx > 0 {
			chunk.Content = joinLines(chunk.Lines)
		}
		chunk.Y = rc.cursor.Reserve(height)
		acc := rc.cursor.acc()
		acc.appendText(chunk)
		if chunkIdx == 0 {
			first = placement{acc: acc, y: chunk.Y}
		}
		lines = lines[n:]
	}
	return first
}

func joinLines(lines []TextLine) string {
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = ln.Content
	}
	return strings.Join(parts, "\n")
}
