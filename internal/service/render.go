package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"mdrepo/internal/filetype"
	"mdrepo/internal/model"
	"mdrepo/internal/render"
)

// Render resolves filename to a stored record and dispatches on its type:
// markdown goes through the HTML pipeline and the page template, everything
// else is served raw with a mime type derived from the extension alone.
func (s *fileService) Render(ctx context.Context, filename string) (*RenderedPayload, error) {
	f, err := s.repo.FindByFilename(ctx, filename)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(f.Content)
	if err != nil {
		// The base64 envelope is a persistence invariant; a decode failure
		// here means the stored row is damaged.
		return nil, fmt.Errorf("%w: id %s: %v", ErrCorruptContent, f.ID, err)
	}

	if f.FileType == model.FileTypeMarkdown {
		htmlContent, err := render.MarkdownToHTML(raw)
		if err != nil {
			return nil, err
		}
		page := s.tmpl.Render(render.Page{
			PageTitle:  "Viewing " + f.Filename,
			Title:      f.Filename,
			Navigation: render.BackLink,
			TagsHTML:   render.ViewerTags(f.Tags),
			Content:    htmlContent,
		})
		return &RenderedPayload{ContentType: "text/html", Body: []byte(page)}, nil
	}

	return &RenderedPayload{
		ContentType: filetype.MimeByExtension(f.Filename),
		Body:        raw,
	}, nil
}
