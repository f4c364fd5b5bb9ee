package render

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder tokens recognized by the page template.
const (
	placeholderPageTitle  = "__page_title__"
	placeholderTitle      = "__title__"
	placeholderNavigation = "__navigation__"
	placeholderTags       = "__tags__"
	placeholderContent    = "__content__"
)

// Page holds the values substituted into the shared page template.
// Content is expected to be ready-to-serve HTML.
type Page struct {
	PageTitle  string
	Title      string
	Navigation string
	TagsHTML   string
	Content    string
}

// Template is the shared HTML page shell, loaded once at startup.
type Template struct {
	raw string
}

// NewTemplate wraps a raw template string.
func NewTemplate(raw string) *Template {
	return &Template{raw: raw}
}

// LoadTemplate reads the page template from disk.
func LoadTemplate(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return NewTemplate(string(b)), nil
}

// Render substitutes the page values into the template. All non-content
// placeholders are resolved first in a fixed order; __content__ is replaced
// last in a single final pass so the injected HTML is never re-scanned for
// placeholder tokens.
func (t *Template) Render(p Page) string {
	out := t.raw
	for _, sub := range []struct {
		token string
		value string
	}{
		{placeholderPageTitle, p.PageTitle},
		{placeholderTitle, p.Title},
		{placeholderNavigation, p.Navigation},
		{placeholderTags, p.TagsHTML},
	} {
		out = strings.ReplaceAll(out, sub.token, sub.value)
	}
	return strings.ReplaceAll(out, placeholderContent, p.Content)
}
