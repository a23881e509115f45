package feeds

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt reduces feed HTML to a bounded plain-text excerpt
//
// script and style subtrees are dropped entirely; everything else
// flattens to its text with whitespace collapsed. Non-HTML input passes
// through the same collapse, so plain-text descriptions survive
func Excerpt(html string, max int) string {
	text := html
	if strings.ContainsRune(html, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}
	return truncate(collapse(text), max)
}

// collapse squeezes runs of whitespace into single spaces
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncate cuts at the last word boundary under max
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return cut
}
