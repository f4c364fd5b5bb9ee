package render

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"mdrepo/internal/model"
)

// NoTagsComment fills the __tags__ slot when an entry has no tags.
const NoTagsComment = "<!-- No tags -->"

// HomeNavigation fills the __navigation__ slot on the home page.
const HomeNavigation = "<!-- No navigation on home page -->"

// BackLink is the navigation fragment on rendered file pages.
const BackLink = `<a href="/" class="back-link">Back to file list</a>`

// TagSpans renders a tag map as key: value spans, keys sorted for stable
// output. Returns an empty string for a nil or empty map.
func TagSpans(tags model.Tags) string {
	var b strings.Builder
	for _, key := range tags.Keys() {
		fmt.Fprintf(&b,
			`<span class="tag"><span class="tag-key">%s</span>: <span class="tag-value">%s</span></span>`,
			html.EscapeString(key), html.EscapeString(tags[key].String()))
	}
	return b.String()
}

// ViewerTags builds the __tags__ fragment for a rendered markdown page.
func ViewerTags(tags model.Tags) string {
	if len(tags) == 0 {
		return NoTagsComment
	}
	return "<h3>Tags:</h3>" + TagSpans(tags)
}

// HomeContent builds the __content__ fragment for the home page: the flat
// file table followed by the tag and upload-session groupings.
func HomeContent(view model.IndexView) string {
	if view.Empty {
		return `<div class="empty-message">No files uploaded yet.</div>`
	}

	var b strings.Builder

	b.WriteString("<table>\n<thead>\n<tr><th>Filename</th><th>Type</th><th>Created At</th><th>Tags</th></tr>\n</thead>\n<tbody>\n")
	for _, f := range view.Files {
		writeFileRow(&b, f)
	}
	b.WriteString("</tbody>\n</table>\n")

	if len(view.TagGroups) > 0 {
		b.WriteString(`<h2>By tag</h2>` + "\n")
		for _, g := range view.TagGroups {
			fmt.Fprintf(&b, `<h3 class="tag-group">%s</h3>`+"\n<ul>\n", html.EscapeString(g.Key))
			for _, f := range g.Files {
				fmt.Fprintf(&b, `<li>%s</li>`+"\n", fileLink(f))
			}
			b.WriteString("</ul>\n")
		}
	}

	b.WriteString(`<h2>By upload session</h2>` + "\n<ul>\n")
	for _, s := range view.Sessions {
		fmt.Fprintf(&b, `<li><span class="session">%s</span> (%d files)<ul>`+"\n",
			html.EscapeString(s.ID), s.Size())
		for _, f := range s.Files {
			fmt.Fprintf(&b, `<li>%s</li>`+"\n", fileLink(f))
		}
		b.WriteString("</ul></li>\n")
	}
	b.WriteString("</ul>\n")

	return b.String()
}

func writeFileRow(b *strings.Builder, f model.UploadedFile) {
	tagsHTML := `<div class="tags">`
	if len(f.Tags) > 0 {
		tagsHTML += TagSpans(f.Tags)
	} else {
		tagsHTML += `<span style="color: #6a737d;">No tags</span>`
	}
	tagsHTML += `</div>`

	fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
		fileLink(f), f.FileType, f.CreatedAt.Format("2006-01-02 15:04"), tagsHTML)
}

func fileLink(f model.UploadedFile) string {
	return fmt.Sprintf(`<a href="/render/%s" class="filetype-%s">%s</a>`,
		url.PathEscape(f.Filename), f.FileType, html.EscapeString(f.Filename))
}
