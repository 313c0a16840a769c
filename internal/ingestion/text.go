// Package ingestion turns uploaded CVs and rich-text job descriptions into
// plain text for prompts and email bodies.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	// PDF extraction leaves page breaks, non-breaking spaces and zero-width marks.
	invisibles = strings.NewReplacer(
		"\r\n", "\n", "\r", "\n", "\f", "\n\n",
		"\u00a0", " ", "\u200b", "", "\ufeff", "",
	)
	innerSpace = regexp.MustCompile(`[ \t]{2,}|\t`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	glyphList  = regexp.MustCompile(`^[•◦▪·●]\s*`)
)

// CleanText normalizes extracted text: LF line endings, single spaces inside
// lines, at most one blank line in a row. Markdown headings are left-aligned,
// bullet glyphs become "- " and other lines keep their indentation.
func CleanText(s string) string {
	lines := strings.Split(invisibles.Replace(s), "\n")
	for i, line := range lines {
		body := strings.TrimSpace(line)
		if body == "" {
			lines[i] = ""
			continue
		}
		body = innerSpace.ReplaceAllString(body, " ")
		switch {
		case strings.HasPrefix(body, "#"):
			lines[i] = body
			continue
		case glyphList.MatchString(body):
			body = glyphList.ReplaceAllString(body, "- ")
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		lines[i] = strings.Repeat(" ", indent) + body
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}
