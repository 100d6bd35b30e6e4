package profile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/profile"
	"github.com/ByLCY/folio/resume"
)

func load(t *testing.T, src string) *layout.Profile {
	t.Helper()
	p, err := profile.Load(strings.NewReader(src))
	require.NoError(t, err)
	return p
}

func TestDefaultMatchesBuiltinProfile(t *testing.T) {
	p, err := profile.Default()
	require.NoError(t, err)
	want := layout.DefaultProfile()

	assert.Equal(t, want.Width, p.Width)
	assert.Equal(t, want.Height, p.Height)
	assert.Equal(t, want.Margin, p.Margin)
	assert.Equal(t, want.Spacing, p.Spacing)
	assert.Equal(t, want.Labels, p.Labels)
	assert.Equal(t, want.Meta, p.Meta)
	for _, role := range layout.Roles {
		got, exp := p.Styles[role], want.Styles[role]
		assert.Equal(t, exp.Font, got.Font, role)
		assert.InDelta(t, exp.Size, got.Size, 1e-9, role)
		assert.InDelta(t, exp.LineHeight, got.LineHeight, 1e-9, role)
		assert.Equal(t, exp.Color, got.Color, role)
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a, err := profile.Default()
	require.NoError(t, err)
	a.Labels[resume.SectionSkills] = "Stack"
	b, err := profile.Default()
	require.NoError(t, err)
	assert.Equal(t, "Skills", b.Labels[resume.SectionSkills])
}

func TestMargins(t *testing.T) {
	cases := map[string]layout.Margin{
		"margin 10mm":                {Top: 10, Right: 10, Bottom: 10, Left: 10},
		"margin 10mm 20mm":           {Top: 10, Right: 20, Bottom: 10, Left: 20},
		"margin 10mm 20mm 30mm":      {Top: 10, Right: 20, Bottom: 30, Left: 20},
		"margin 10mm 20mm 30mm 40mm": {Top: 10, Right: 20, Bottom: 30, Left: 40},
		"margin 1cm":                 {Top: 10, Right: 10, Bottom: 10, Left: 10},
	}
	for spec, want := range cases {
		p := load(t, "profile T v1 { page A4 "+spec+" }")
		assert.InDelta(t, want.Top, p.Margin.Top, 1e-9, spec)
		assert.InDelta(t, want.Right, p.Margin.Right, 1e-9, spec)
		assert.InDelta(t, want.Bottom, p.Margin.Bottom, 1e-9, spec)
		assert.InDelta(t, want.Left, p.Margin.Left, 1e-9, spec)
	}
}

func TestLandscapeSwapsDimensions(t *testing.T) {
	p := load(t, "profile T v1 { page letter landscape }")
	assert.Equal(t, "LETTER", p.PageSize)
	assert.Equal(t, 279.4, p.Width)
	assert.Equal(t, 215.9, p.Height)
}

func TestStylesInheritAndRescaleLineHeight(t *testing.T) {
	p := load(t, `
profile T v1 {
  resources {
    color Accent = #0F62FE
    style base { size: 10pt; line-height: 1.5x }
    style heading extends base { size: 14pt; color: Accent }
  }
}`)
	h := p.Styles[layout.RoleHeading]
	assert.InDelta(t, 14*layout.PtToMm, h.Size, 1e-9)
	assert.InDelta(t, 14*layout.PtToMm*1.5, h.LineHeight, 1e-9)
	assert.Equal(t, layout.Color{R: 0x0F, G: 0x62, B: 0xFE}, h.Color)
	// 未声明的用途保持默认值。
	assert.Equal(t, layout.DefaultProfile().Styles[layout.RoleBody], p.Styles[layout.RoleBody])
}

func TestSpacingLabelsAndMeta(t *testing.T) {
	p := load(t, `
profile T v1 {
  meta { title: "CV of ${header.name}"; keywords: ["a", "b"] }
  page A5 { section-gap: 7mm; bullet: "-"; rule-color: #333 }
  labels { experience: "Work" }
}`)
	assert.Equal(t, 148.0, p.Width)
	assert.Equal(t, 7.0, p.Spacing.SectionGap)
	assert.Equal(t, "-", p.Spacing.Bullet)
	assert.Equal(t, layout.Color{R: 0x33, G: 0x33, B: 0x33}, p.Spacing.RuleColor)
	assert.Equal(t, "Work", p.Label(resume.SectionExperience))
	assert.Equal(t, "CV of ${header.name}", p.Meta.Title)
	assert.Equal(t, []string{"a", "b"}, p.Meta.Keywords)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown size":   `profile T v1 { page B9 }`,
		"bad margin":     `profile T v1 { page A4 margin }`,
		"unknown param":  `profile T v1 { page A4 sideways }`,
		"undefined font": `profile T v1 { resources { style body { font: Missing } } }`,
		"undefined base": `profile T v1 { resources { style body extends nothing { size: 9pt } } }`,
		"style cycle":    `profile T v1 { resources { style a extends b { size: 9pt }; style b extends a { size: 9pt } } }`,
		"unknown color":  `profile T v1 { resources { style body { color: Nope } } }`,
		"unknown label":  `profile T v1 { labels { hobbies: "Fun" } }`,
		"unknown key":    `profile T v1 { page A4 { gutter: 3mm } }`,
		"syntax":         `profile T { }`,
		"huge margins":   `profile T v1 { page A5 margin 80mm }`,
		"bad template":   `profile T v1 { meta { title: "${header.name" } }`,
	}
	for name, src := range cases {
		_, err := profile.Load(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestCycleErrorNamesChain(t *testing.T) {
	_, err := profile.Load(strings.NewReader(`profile T v1 { resources { style name extends title {}; style title extends name {} } }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name -> title -> name")
}
