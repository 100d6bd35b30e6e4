package resume

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize 返回一个新的、清洗过的文档，不修改入参：
// 去除首尾空白、统一为 NFC、单行字段折叠空白、联系方式压成一行、丢弃空要点与全空条目。
func Normalize(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	out := &Document{
		Header: Header{
			Name:    fold(doc.Header.Name),
			Title:   fold(doc.Header.Title),
			Contact: singleLine(clean(doc.Header.Contact)),
		},
		Summary:   clean(doc.Summary),
		Skills:    clean(doc.Skills),
		Languages: clean(doc.Languages),
	}
	for _, e := range doc.Experience {
		entry := Experience{
			Company:  fold(e.Company),
			Location: fold(e.Location),
			Role:     fold(e.Role),
			Date:     fold(e.Date),
		}
		for _, b := range e.Bullets {
			if b = clean(b); b != "" {
				entry.Bullets = append(entry.Bullets, b)
			}
		}
		if entry.Company == "" && entry.Location == "" && entry.Role == "" && entry.Date == "" && len(entry.Bullets) == 0 {
			continue
		}
		out.Experience = append(out.Experience, entry)
	}
	for _, e := range doc.Education {
		entry := Education{
			School:   fold(e.School),
			Location: fold(e.Location),
			Degree:   fold(e.Degree),
			Date:     fold(e.Date),
		}
		if entry.School == "" && entry.Location == "" && entry.Degree == "" && entry.Date == "" {
			continue
		}
		out.Education = append(out.Education, entry)
	}
	return out
}

// Validate 只校验形状（必填字段），不判断内容真伪。
func (d *Document) Validate() error {
	if d == nil {
		return malformed("", "document is nil")
	}
	if strings.TrimSpace(d.Header.Name) == "" {
		return malformed("header.name", "is required")
	}
	if strings.TrimSpace(d.Header.Contact) == "" {
		return malformed("header.contact", "is required")
	}
	return nil
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(norm.NFC.String(s))
}

// fold 用于单行字段：所有空白（含换行）折叠为一个空格。
func fold(s string) string {
	return strings.Join(strings.Fields(clean(s)), " ")
}

func singleLine(s string) string {
	if !strings.ContainsAny(s, "\n\r") {
		return s
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}
