// Package extract pulls the printable structure out of the semi-structured
// markup emitted by the document renderers: one title, an optional subtitle
// and an ordered list of plain-text sections. It is what lets three document
// types share a single raw writer that knows nothing about their semantics.
package extract

import (
	"regexp"
	"strings"
)

// Content is the extracted plain-text structure.
type Content struct {
	Title    string
	Subtitle string
	Sections []string
}

var (
	h1Re      = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	h2Re      = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)
	sectionRe = regexp.MustCompile(`(?is)<div[^>]*class="section"[^>]*>(.*?)</div>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	entityRe  = regexp.MustCompile(`&#?[0-9a-zA-Z]+;`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// The only entities the renderers emit. Anything else collapses to a single
// space rather than warranting a full decode table.
var entities = map[string]string{
	"&nbsp;": " ",
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
}

// Extract parses the markup. A missing level-1 heading yields fallbackTitle.
func Extract(markup, fallbackTitle string) Content {
	c := Content{Title: fallbackTitle}

	if m := h1Re.FindStringSubmatch(markup); m != nil {
		if title := clean(m[1]); title != "" {
			c.Title = title
		}
	}
	if m := h2Re.FindStringSubmatch(markup); m != nil {
		c.Subtitle = clean(m[1])
	}
	for _, m := range sectionRe.FindAllStringSubmatch(markup, -1) {
		c.Sections = append(c.Sections, clean(m[1]))
	}
	return c
}

// clean strips tags, unescapes the known entities, collapses whitespace runs
// and trims the result.
func clean(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = entityRe.ReplaceAllStringFunc(s, func(e string) string {
		if r, ok := entities[e]; ok {
			return r
		}
		return " "
	})
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
