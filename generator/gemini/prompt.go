package gemini

import (
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

// maxSourceRunes 限制纯文本输入的长度，超出部分直接截断。
const maxSourceRunes = 25000

const templateReference = `
WILLIAM DAVIS
Experienced Project Manager | IT | Leadership | Cost Management
+1-541-754-3010 • Email • linkedin.com • New York, NY, USA

Summary
With over 12 years of experience in project management...

Skills
Project Management • Leadership • Cost Management...

Experience
IBM                                          New York, NY, USA
Senior IT Project Manager                    2018 - 2023
• Oversaw a $2M project portfolio...
• Initiated and successfully implemented...

Education
Massachusetts Institute of Technology        Cambridge, MA, USA
Bachelor's Degree in Computer Science        2012 - 2013
`

const instructions = `You are an expert resume writer. Rewrite the user's resume so that it follows the structure of the reference below. Copy the structure only, never its content.

REFERENCE:
` + templateReference + `
RULES:
1. Never invent skills, employers, schools or degrees that are not in the source.
2. Header: name, an optional one-line title, and a single contact line with fields separated by " | ".
3. Summary: one professional paragraph.
4. Skills: one block of skills separated by " • ".
5. Experience: company, location, role and date as separate fields; bullets start with strong action verbs.
6. Education: school, location, degree and date.
7. Keep the user's phone and email when present, otherwise use placeholders such as "[Phone]".

Return ONLY a JSON object with this shape:
{
  "pdfContent": {
    "header": { "name": "", "title": "", "contact": "" },
    "summary": "",
    "skills": "",
    "experience": [ { "company": "", "location": "", "role": "", "date": "", "bullets": [""] } ],
    "education": [ { "school": "", "location": "", "degree": "", "date": "" } ],
    "languages": ""
  }
}`

// buildContents 组装请求：PDF 作为内联数据连同说明一起发送，文本则拼在说明之后。
func buildContents(content []byte, mimeType string) []*genai.Content {
	if isPDF(mimeType) {
		return []*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(content, "application/pdf"),
			genai.NewPartFromText(instructions),
		}, genai.RoleUser)}
	}
	text := instructions + "\n\nUSER SOURCE CONTENT:\n" + truncateRunes(strings.ToValidUTF8(string(content), ""), maxSourceRunes)
	return []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
}

func isPDF(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == "application/pdf"
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
