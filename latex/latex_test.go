package latex_test

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/latex"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/resume"
)

func minimalDoc() *resume.Document {
	return &resume.Document{Header: resume.Header{Name: "Jane Doe", Contact: "jane@x.com"}}
}

func fullDoc() *resume.Document {
	return &resume.Document{
		Header:  resume.Header{Name: "Jane Doe", Title: "Backend Engineer", Contact: "jane@x.com | Berlin"},
		Summary: "Ships reliable services.",
		Skills:  "Go • SQL • C#",
		Experience: []resume.Experience{
			{Company: "Acme & Co", Location: "Berlin", Role: "Staff Engineer", Date: "2020 - now", Bullets: []string{"Cut costs by 30%", "Led on-call"}},
			{Company: "Globex", Role: "Engineer"},
		},
		Education: []resume.Education{{School: "TU Berlin", Degree: "MSc", Date: "2015"}},
		Languages: "English, German",
	}
}

func emit(t *testing.T, doc *resume.Document) string {
	t.Helper()
	out, err := latex.Emit(doc, latex.Options{})
	require.NoError(t, err)
	return out
}

var sectionRe = regexp.MustCompile(`(?m)^\\resumesection\{([^}]*)\}`)

func sectionLabels(src string) []string {
	var out []string
	for _, m := range sectionRe.FindAllStringSubmatch(src, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestEmitMinimalHeaderOnly(t *testing.T) {
	out := emit(t, minimalDoc())
	assert.Empty(t, sectionLabels(out))
	assert.Contains(t, out, `\textbf{JANE DOE}`)
	assert.Contains(t, out, "jane@x.com")
	assert.Equal(t, 1, strings.Count(out, `\\[`), "title line must be omitted")
	assert.True(t, strings.HasPrefix(out, `\documentclass`))
	assert.True(t, strings.HasSuffix(out, "\\end{document}\n"))
}

func TestEmitFullDocument(t *testing.T) {
	out := emit(t, fullDoc())
	assert.Equal(t, []string{"Summary", "Skills", "Experience", "Education", "Languages"}, sectionLabels(out))
	assert.Equal(t, 2, strings.Count(out, `\\[`))
	assert.Equal(t, 2, strings.Count(out, `\item `))
	assert.Contains(t, out, `\textbf{Acme \& Co}}\hfill`)
	assert.Contains(t, out, `Cut costs by 30\%`)
	assert.Contains(t, out, `Go \textbullet{} SQL \textbullet{} C\#`)
	assert.Contains(t, out, `\usepackage{lmodern}`)
	assert.Contains(t, out, `paperwidth=210mm,paperheight=297mm,top=18mm`)
	assert.Contains(t, out, `pdftitle={Jane Doe}`)
	// 没有地点与日期的条目不输出 \hfill。
	assert.Contains(t, out, `\textbf{Globex}}\\`)
}

func TestEscape(t *testing.T) {
	assert.Equal(t,
		`50\% \& \$5\_\#\{\}\textasciitilde{}\textasciicircum{}\textbackslash{}`,
		latex.Escape(`50% & $5_#{}~^\`))
}

func TestEmitMultilineText(t *testing.T) {
	doc := minimalDoc()
	doc.Summary = "first\nsecond\n\nthird"
	out := emit(t, doc)
	assert.Contains(t, out, "first \\\\\nsecond\n\nthird")
}

func TestEmitUsesProfileLabels(t *testing.T) {
	prof := layout.DefaultProfile()
	prof.Labels[resume.SectionExperience] = "Work History"
	doc := minimalDoc()
	doc.Experience = []resume.Experience{{Company: "Acme", Role: "Engineer"}}
	out, err := latex.Emit(doc, latex.Options{Profile: prof})
	require.NoError(t, err)
	assert.Equal(t, []string{"Work History"}, sectionLabels(out))
}

func TestEmitSkipsBlankSections(t *testing.T) {
	doc := minimalDoc()
	doc.Summary = "   \n  "
	doc.Languages = "\t"
	doc.Experience = []resume.Experience{{Bullets: []string{" "}}}
	doc.Education = []resume.Education{{}}
	out := emit(t, doc)
	assert.Empty(t, sectionLabels(out))
	assert.NotContains(t, out, `\noindent`)
}

func TestEmitFoldsEntryFields(t *testing.T) {
	doc := minimalDoc()
	doc.Experience = []resume.Experience{{Company: "Acme\n\nCorp", Role: "Lead\nDev", Date: "2020\n\n2024"}}
	doc.Education = []resume.Education{{School: "TU\n\nBerlin", Degree: "MSc"}}
	out := emit(t, doc)
	assert.Contains(t, out, `\textbf{Acme Corp}`)
	assert.Contains(t, out, `\textit{Lead Dev}`)
	assert.Contains(t, out, "2020 2024")
	assert.Contains(t, out, `\textbf{TU Berlin}`)
	assert.NotContains(t, out, "\n\n\\hfill")
}

func TestEmitBulletOnlyEntry(t *testing.T) {
	doc := minimalDoc()
	doc.Experience = []resume.Experience{{Bullets: []string{"only a bullet"}}}
	out := emit(t, doc)
	assert.Equal(t, []string{"Experience"}, sectionLabels(out))
	assert.Contains(t, out, "only a bullet")
	assert.NotContains(t, out, `\noindent`)
}

func TestEmitRejectsMalformed(t *testing.T) {
	_, err := latex.Emit(&resume.Document{Header: resume.Header{Name: "X"}}, latex.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, resume.ErrMalformed))
}

type runeTypesetter struct{}

func (runeTypesetter) LayoutLines(content string, style layout.TextStyle, width float64) ([]layout.TextLine, error) {
	lines := layout.WrapText(content, width, func(s string) float64 { return float64(utf8.RuneCountInString(s)) * 2 })
	for i := range lines {
		lines[i].Height = style.Size
	}
	return lines, nil
}

// TestEmittersAgreeOnSections 对可选段落的所有组合，检查两个输出端的段落集合与顺序一致。
func TestEmittersAgreeOnSections(t *testing.T) {
	full := fullDoc()
	prof := layout.DefaultProfile()
	for mask := 0; mask < 32; mask++ {
		doc := minimalDoc()
		if mask&1 != 0 {
			doc.Summary = full.Summary
		}
		if mask&2 != 0 {
			doc.Skills = full.Skills
		}
		if mask&4 != 0 {
			doc.Experience = full.Experience
		}
		if mask&8 != 0 {
			doc.Education = full.Education
		}
		if mask&16 != 0 {
			doc.Languages = full.Languages
		}

		res, err := layout.Build(doc, layout.BuildOptions{Typesetter: runeTypesetter{}, Profile: prof})
		require.NoError(t, err)
		var fromLayout []string
		for _, p := range res.Pages {
			for _, tb := range p.Texts {
				if tb.Part == "heading" {
					fromLayout = append(fromLayout, tb.Content)
				}
			}
		}

		out, err := latex.Emit(doc, latex.Options{Profile: prof})
		require.NoError(t, err)
		assert.Equal(t, fromLayout, sectionLabels(out), "mask=%05b", mask)
	}
}
