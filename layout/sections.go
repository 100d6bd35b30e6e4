package layout

import (
	"github.com/ByLCY/folio/resume"
)

// rightShare 限制右侧字段（地点、日期）最多占用的内容宽度比例。
const rightShare = 0.45

type sectionRenderer struct {
	kind   resume.Section
	render func(rc *renderContext) error
}

// sectionTable 按固定顺序排列；Build 只渲染 HasContent 为真的段落。
var sectionTable = []sectionRenderer{
	{resume.SectionHeader, renderHeader},
	{resume.SectionSummary, func(rc *renderContext) error { return renderBody(rc, rc.doc.Summary, "left") }},
	{resume.SectionSkills, func(rc *renderContext) error { return renderBody(rc, rc.doc.Skills, "center") }},
	{resume.SectionExperience, renderExperience},
	{resume.SectionEducation, renderEducation},
	{resume.SectionLanguages, func(rc *renderContext) error { return renderBody(rc, rc.doc.Languages, "left") }},
}

// renderHeader 居中输出姓名、职位（可选）与联系方式，不画分隔线。
func renderHeader(rc *renderContext) error {
	h := rc.doc.Header
	name, err := rc.composeText(RoleName, "name", h.DisplayName(), rc.width, "center")
	if err != nil {
		return err
	}
	rc.flowText(name)

	if h.Title != "" {
		title, err := rc.composeText(RoleTitle, "title", h.Title, rc.width, "center")
		if err != nil {
			return err
		}
		rc.cursor.Advance(rc.profile.Spacing.HeaderGap)
		rc.flowText(title)
	}

	contact, err := rc.composeText(RoleContact, "contact", h.Contact, rc.width, "center")
	if err != nil {
		return err
	}
	rc.cursor.Advance(rc.profile.Spacing.HeaderGap)
	rc.flowText(contact)
	return nil
}

// heading 是段落标题与其下方分隔线。
type heading struct {
	title  TextBox
	height float64
}

func (rc *renderContext) composeHeading() (heading, error) {
	title, err := rc.composeText(RoleHeading, "heading", rc.profile.Label(rc.section), rc.width, "center")
	if err != nil {
		return heading{}, err
	}
	sp := rc.profile.Spacing
	return heading{title: title, height: title.Height + sp.RuleGap + sp.RuleAfter}, nil
}

// placeHeading 先确认标题与首个不可拆分单元能放在同一页，再放置标题与分隔线。
func (rc *renderContext) placeHeading(h heading, firstUnit float64) {
	rc.cursor.KeepTogether(h.height + firstUnit)
	y := rc.cursor.Reserve(h.height)
	acc := rc.cursor.acc()

	title := h.title
	title.Y = y
	acc.appendText(title)

	sp := rc.profile.Spacing
	ruleY := y + title.Height + sp.RuleGap
	acc.appendLine(Line{
		X1:      rc.x,
		Y1:      ruleY,
		X2:      rc.x + rc.width,
		Y2:      ruleY,
		Color:   sp.RuleColor,
		Width:   sp.RuleWidth,
		Section: rc.section.String(),
	})
}

// renderBody 处理 Summary/Skills/Languages：标题 + 分隔线 + 折行正文。
func renderBody(rc *renderContext, text, align string) error {
	h, err := rc.composeHeading()
	if err != nil {
		return err
	}
	body, err := rc.composeText(RoleBody, "body", text, rc.width, align)
	if err != nil {
		return err
	}
	rc.placeHeading(h, body.Lines[0].Height)
	rc.flowText(body)
	return nil
}

// field 是两栏行中的一个字段。
type field struct {
	part string
	text string
	role Role
}

// entryRows 是条目的两行表头，作为一个整体放置，永不跨页拆开。
type entryRows struct {
	boxes  []TextBox // Y 为相对表头顶部的偏移
	height float64
}

// composeRows 排版两栏行：左侧字段占剩余宽度，右侧字段右对齐。
func (rc *renderContext) composeRows(rows [2][2]field) (entryRows, error) {
	var out entryRows
	for _, row := range rows {
		left, right := row[0], row[1]
		if left.text == "" && right.text == "" {
			continue
		}
		if out.height > 0 {
			out.height += rc.profile.Spacing.RowGap
		}
		top := out.height
		rowHeight := 0.0
		leftWidth := rc.width

		var rightBox *TextBox
		if right.text != "" {
			box, err := rc.composeText(right.role, right.part, right.text, rc.width*rightShare, "right")
			if err != nil {
				return entryRows{}, err
			}
			used := widestLine(box.Lines)
			if used <= 0 || used > box.Width {
				used = box.Width
			}
			box.Width = used
			box.X = rc.x + rc.width - used
			box.Y = top
			rightBox = &box
			rowHeight = box.Height
			leftWidth = rc.width - used - rc.profile.Spacing.ColumnGap
		}
		// 左侧字段先于右侧放入，保持阅读顺序。
		if left.text != "" {
			box, err := rc.composeText(left.role, left.part, left.text, leftWidth, "left")
			if err != nil {
				return entryRows{}, err
			}
			box.Y = top
			out.boxes = append(out.boxes, box)
			if box.Height > rowHeight {
				rowHeight = box.Height
			}
		}
		if rightBox != nil {
			out.boxes = append(out.boxes, *rightBox)
		}
		out.height += rowHeight
	}
	return out, nil
}

func widestLine(lines []TextLine) float64 {
	w := 0.0
	for _, ln := range lines {
		if ln.Width > w {
			w = ln.Width
		}
	}
	return w
}

func (rc *renderContext) placeRows(rows entryRows) {
	rc.cursor.KeepTogether(rows.height)
	y := rc.cursor.Reserve(rows.height)
	acc := rc.cursor.acc()
	for _, b := range rows.boxes {
		b.Y += y
		acc.appendText(b)
	}
}

// renderList 是 Experience 与 Education 共用的流程：标题、逐条表头、可选要点。
func renderList(rc *renderContext, rows []entryRows, bullets [][]string) error {
	h, err := rc.composeHeading()
	if err != nil {
		return err
	}
	first, err := rc.firstUnit(rows[0], bullets)
	if err != nil {
		return err
	}
	rc.placeHeading(h, first)
	for i, r := range rows {
		if i > 0 {
			rc.cursor.Advance(rc.profile.Spacing.EntryGap)
		}
		rc.placeRows(r)
		if i < len(bullets) {
			for j, b := range bullets[i] {
				if j == 0 {
					rc.cursor.Advance(rc.profile.Spacing.RowGap)
				}
				if err := rc.placeBullet(b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// firstUnit 返回首个条目中不可拆分部分的高度：通常是两行表头；
// 表头为空时是 RowGap 加首条要点的首行。
func (rc *renderContext) firstUnit(rows entryRows, bullets [][]string) (float64, error) {
	if rows.height > 0 || len(bullets) == 0 || len(bullets[0]) == 0 {
		return rows.height, nil
	}
	para, err := rc.composeText(RoleBody, "bullet", bullets[0][0], rc.width-rc.profile.Spacing.BulletIndent, "left")
	if err != nil {
		return 0, err
	}
	return rc.profile.Spacing.RowGap + para.Lines[0].Height, nil
}

// placeBullet 放置一条要点：缩进的折行段落，首块左侧画要点符号。段落可以跨页拆分。
func (rc *renderContext) placeBullet(text string) error {
	sp := rc.profile.Spacing
	indent := sp.BulletIndent
	para, err := rc.composeText(RoleBody, "bullet", text, rc.width-indent, "left")
	if err != nil {
		return err
	}
	para.X = rc.x + indent

	glyph, err := rc.composeText(RoleBody, "bullet-glyph", sp.Bullet, indent, "left")
	if err != nil {
		return err
	}
	glyph.Lines = glyph.Lines[:1]
	glyph.Height = glyph.Lines[0].Height
	glyph.Width = glyph.Lines[0].Width
	glyph.X = rc.x + (indent-glyph.Width)/2

	first := rc.flowText(para)
	glyph.Y = first.y
	first.acc.appendText(glyph)
	return nil
}

func renderExperience(rc *renderContext) error {
	rows := make([]entryRows, 0, len(rc.doc.Experience))
	bullets := make([][]string, 0, len(rc.doc.Experience))
	for _, e := range rc.doc.Experience {
		r, err := rc.composeRows([2][2]field{
			{{"company", e.Company, RoleEmphasis}, {"location", e.Location, RoleBody}},
			{{"role", e.Role, RoleItalic}, {"date", e.Date, RoleBody}},
		})
		if err != nil {
			return err
		}
		rows = append(rows, r)
		bullets = append(bullets, e.Bullets)
	}
	return renderList(rc, rows, bullets)
}

func renderEducation(rc *renderContext) error {
	rows := make([]entryRows, 0, len(rc.doc.Education))
	for _, e := range rc.doc.Education {
		r, err := rc.composeRows([2][2]field{
			{{"school", e.School, RoleEmphasis}, {"location", e.Location, RoleBody}},
			{{"degree", e.Degree, RoleItalic}, {"date", e.Date, RoleBody}},
		})
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}
	return renderList(rc, rows, nil)
}
