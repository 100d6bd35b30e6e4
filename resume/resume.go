package resume

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 该文件定义简历文档模型，两个输出端（分页文档与 LaTeX 源）共用同一份只读数据。

// Document 是归一化后的简历数据，构造后不再修改。
type Document struct {
	Header     Header       `json:"header"`
	Summary    string       `json:"summary,omitempty"`
	Skills     string       `json:"skills,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Languages  string       `json:"languages,omitempty"`
}

// Header 为页首信息，name 与 contact 必填。
type Header struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Contact string `json:"contact"`
}

// DisplayName 返回排版用的姓名（统一大写）。
func (h Header) DisplayName() string {
	return cases.Upper(language.Und).String(h.Name)
}

// Experience 是一段工作经历。
type Experience struct {
	Company  string   `json:"company"`
	Location string   `json:"location,omitempty"`
	Role     string   `json:"role"`
	Date     string   `json:"date,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

// Education 是一段教育经历，两行布局与 Experience 相同，但没有要点。
type Education struct {
	School   string `json:"school"`
	Location string `json:"location,omitempty"`
	Degree   string `json:"degree"`
	Date     string `json:"date,omitempty"`
}

// Section 标识简历的段落种类。
type Section int

const (
	SectionHeader Section = iota
	SectionSummary
	SectionSkills
	SectionExperience
	SectionEducation
	SectionLanguages
)

// Sections 是固定的段落顺序，所有输出端都必须按此顺序遍历。
var Sections = []Section{
	SectionHeader,
	SectionSummary,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionLanguages,
}

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionSummary:
		return "summary"
	case SectionSkills:
		return "skills"
	case SectionExperience:
		return "experience"
	case SectionEducation:
		return "education"
	case SectionLanguages:
		return "languages"
	default:
		return "unknown"
	}
}

// HasContent 判断段落是否有可见内容；没有内容的段落不占空间也不输出标题。
// 只含空白的文本与全空的条目都视为没有内容。
func (d *Document) HasContent(s Section) bool {
	if d == nil {
		return false
	}
	switch s {
	case SectionHeader:
		return !blank(d.Header.Name)
	case SectionSummary:
		return !blank(d.Summary)
	case SectionSkills:
		return !blank(d.Skills)
	case SectionExperience:
		for _, e := range d.Experience {
			if !e.empty() {
				return true
			}
		}
		return false
	case SectionEducation:
		for _, e := range d.Education {
			if !e.empty() {
				return true
			}
		}
		return false
	case SectionLanguages:
		return !blank(d.Languages)
	default:
		return false
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (e Experience) empty() bool {
	if !blank(e.Company) || !blank(e.Location) || !blank(e.Role) || !blank(e.Date) {
		return false
	}
	for _, b := range e.Bullets {
		if !blank(b) {
			return false
		}
	}
	return true
}

func (e Education) empty() bool {
	return blank(e.School) && blank(e.Location) && blank(e.Degree) && blank(e.Date)
}

// Visible 按固定顺序返回有内容的段落。
func (d *Document) Visible() []Section {
	out := make([]Section, 0, len(Sections))
	for _, s := range Sections {
		if d.HasContent(s) {
			out = append(out, s)
		}
	}
	return out
}
