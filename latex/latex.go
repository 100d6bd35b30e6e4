// Package latex 把简历文档输出为可直接编译的 LaTeX 源文件。
//
// 与 layout 相互独立：不使用 Cursor，分页交给 TeX，但段落顺序、
// 空段落省略规则与字段位置都与 layout.Build 保持一致。
package latex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/resume"
)

// Options 配置 LaTeX 输出。
type Options struct {
	// Profile 为空时使用 layout.DefaultProfile。
	Profile *layout.Profile
}

type emitter struct {
	b    strings.Builder
	doc  *resume.Document
	prof *layout.Profile
}

type sectionEmitter struct {
	kind resume.Section
	emit func(e *emitter)
}

// sectionTable 与 layout 的段落表顺序一致。
var sectionTable = []sectionEmitter{
	{resume.SectionHeader, (*emitter).header},
	{resume.SectionSummary, func(e *emitter) { e.body(e.doc.Summary, false) }},
	{resume.SectionSkills, func(e *emitter) { e.body(e.doc.Skills, true) }},
	{resume.SectionExperience, (*emitter).experience},
	{resume.SectionEducation, (*emitter).education},
	{resume.SectionLanguages, func(e *emitter) { e.body(e.doc.Languages, false) }},
}

// Emit 生成完整的 LaTeX 文档。文档只读，可与 layout.Build 并发执行。
// 输出基于 resume.Normalize 后的副本，空白内容不会产生段落。
func Emit(doc *resume.Document, opts Options) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	doc = resume.Normalize(doc)
	prof := opts.Profile
	if prof == nil {
		prof = layout.DefaultProfile()
	}
	if err := prof.Check(); err != nil {
		return "", err
	}

	e := &emitter{doc: doc, prof: prof}
	e.preamble()
	e.line(`\begin{document}`)
	for _, sec := range sectionTable {
		if !doc.HasContent(sec.kind) {
			continue
		}
		if sec.kind != resume.SectionHeader {
			e.line(`\resumesection{%s}`, Escape(prof.Label(sec.kind)))
		}
		sec.emit(e)
	}
	e.line(`\end{document}`)
	return e.b.String(), nil
}

func (e *emitter) line(format string, args ...any) {
	if len(args) == 0 {
		e.b.WriteString(format)
	} else {
		fmt.Fprintf(&e.b, format, args...)
	}
	e.b.WriteByte('\n')
}

func (e *emitter) preamble() {
	p := e.prof
	sp := p.Spacing
	meta := layout.ResolveMeta(p, e.doc)

	e.line(`\documentclass[10pt]{article}`)
	e.line(`\usepackage[paperwidth=%smm,paperheight=%smm,top=%smm,right=%smm,bottom=%smm,left=%smm]{geometry}`,
		num(p.Width), num(p.Height), num(p.Margin.Top), num(p.Margin.Right), num(p.Margin.Bottom), num(p.Margin.Left))
	e.line(`\usepackage[T1]{fontenc}`)
	e.line(`\usepackage[utf8]{inputenc}`)
	e.line(`\usepackage{lmodern}`)
	e.line(`\usepackage{xcolor}`)
	e.line(`\usepackage{enumitem}`)
	e.line(`\usepackage[hidelinks,pdftitle={%s},pdfauthor={%s},pdfsubject={%s},pdfcreator={%s},pdfkeywords={%s}]{hyperref}`,
		Escape(meta.Title), Escape(meta.Author), Escape(meta.Subject), Escape(meta.Creator), Escape(strings.Join(meta.Keywords, ", ")))
	e.line("")
	e.line(`\pagestyle{empty}`)
	e.line(`\setlength{\parindent}{0pt}`)
	e.line(`\definecolor{ink}{RGB}{%s}`, rgb(p.Styles[layout.RoleBody].Color))
	e.line(`\definecolor{rule}{RGB}{%s}`, rgb(sp.RuleColor))
	e.line(`\setlist[itemize]{leftmargin=%smm,label={%s},itemsep=0pt,topsep=%smm}`,
		num(sp.BulletIndent), Escape(sp.Bullet), num(sp.RowGap))
	e.line(`\newcommand{\resumesection}[1]{\vspace{%smm}{\centering%s\textbf{#1}\par}\vspace{%smm}{\color{rule}\hrule height %smm}\vspace{%smm}}`,
		num(sp.SectionGap), e.font(layout.RoleHeading), num(sp.RuleGap), num(sp.RuleWidth), num(sp.RuleAfter))
	e.line("")
}

// font 返回切换到指定用途字号与颜色的 LaTeX 命令。
func (e *emitter) font(role layout.Role) string {
	st := e.prof.Styles[role]
	return fmt.Sprintf(`\fontsize{%spt}{%spt}\selectfont\color[RGB]{%s}`,
		num(st.Size*layout.MmToPt), num(st.LineHeight*layout.MmToPt), rgb(st.Color))
}

func (e *emitter) header() {
	h := e.doc.Header
	gap := num(e.prof.Spacing.HeaderGap)
	e.line(`\begin{center}`)
	e.line(`{%s\textbf{%s}}\\[%smm]`, e.font(layout.RoleName), Escape(h.DisplayName()), gap)
	if h.Title != "" {
		e.line(`{%s%s}\\[%smm]`, e.font(layout.RoleTitle), Escape(h.Title), gap)
	}
	e.line(`{%s%s}`, e.font(layout.RoleContact), Escape(h.Contact))
	e.line(`\end{center}`)
}

func (e *emitter) body(text string, centered bool) {
	if centered {
		e.line(`\begin{center}`)
	}
	e.line(`{%s%s\par}`, e.font(layout.RoleBody), paragraphs(text))
	if centered {
		e.line(`\end{center}`)
	}
}

// row 输出两栏行：左侧字段靠左，右侧字段经 \hfill 推到右边距。
func (e *emitter) row(left, right string, leftRole layout.Role) string {
	var b strings.Builder
	if left != "" {
		cmd := `\textbf`
		if leftRole == layout.RoleItalic {
			cmd = `\textit`
		}
		fmt.Fprintf(&b, `{%s%s{%s}}`, e.font(leftRole), cmd, Escape(left))
	}
	if right != "" {
		fmt.Fprintf(&b, `\hfill{%s%s}`, e.font(layout.RoleBody), Escape(right))
	}
	return b.String()
}

func (e *emitter) entry(rows [2]string) {
	var lines []string
	for _, r := range rows {
		if r != "" {
			lines = append(lines, r)
		}
	}
	if len(lines) == 0 {
		return
	}
	e.line(`\noindent %s\par`, strings.Join(lines, `\\`+"\n"))
}

func (e *emitter) experience() {
	for i, x := range e.doc.Experience {
		if i > 0 {
			e.line(`\vspace{%smm}`, num(e.prof.Spacing.EntryGap))
		}
		e.entry([2]string{
			e.row(x.Company, x.Location, layout.RoleEmphasis),
			e.row(x.Role, x.Date, layout.RoleItalic),
		})
		if len(x.Bullets) == 0 {
			continue
		}
		e.line(`\begin{itemize}`)
		for _, bullet := range x.Bullets {
			e.line(`\item {%s%s}`, e.font(layout.RoleBody), paragraphs(bullet))
		}
		e.line(`\end{itemize}`)
	}
}

func (e *emitter) education() {
	for i, x := range e.doc.Education {
		if i > 0 {
			e.line(`\vspace{%smm}`, num(e.prof.Spacing.EntryGap))
		}
		e.entry([2]string{
			e.row(x.School, x.Location, layout.RoleEmphasis),
			e.row(x.Degree, x.Date, layout.RoleItalic),
		})
	}
}

// num 以最多两位小数输出长度，去掉多余的零。
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func rgb(c layout.Color) string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}
