package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// The goldmark instance is built once and reused: its configuration never
// changes and the parser is safe for concurrent use.
var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				// Stored markdown is trusted repository content, so raw
				// HTML blocks pass through like the original documents.
				html.WithUnsafe(),
			),
		)
	})
	return markdownInstance
}

// MarkdownToHTML converts commonmark (plus GFM tables/strikethrough) source
// into an HTML fragment.
func MarkdownToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
