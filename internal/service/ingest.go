package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdrepo/internal/archive"
	"mdrepo/internal/filetype"
	"mdrepo/internal/model"
)

// Ingest persists one upload request. The filename is reduced to the base
// name of the submitted path. A fresh upload session ID is generated per
// request and shared by every entry it produces, so archive members stay
// correlated in listings.
func (s *fileService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	filename := baseName(req.Filepath)
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidPayload)
	}

	session := uuid.NewString()

	if strings.HasSuffix(strings.ToLower(filename), ".zip") {
		return s.ingestArchive(ctx, req, session)
	}
	return s.ingestSingle(ctx, req, filename, session)
}

// ingestSingle stores the payload as-is: it is already the base64 envelope
// the record keeps, so no re-encoding happens. It is still decoded once to
// reject bad payloads up front and to feed the mirror.
func (s *fileService) ingestSingle(ctx context.Context, req IngestRequest, filename, session string) (*IngestResult, error) {
	raw, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	entry := &model.UploadedFile{
		ID:            uuid.NewString(),
		Filename:      filename,
		Content:       req.ContentBase64,
		FileType:      filetype.Classify(filename),
		Tags:          req.Tags,
		UploadSession: session,
		CreatedAt:     time.Now().UTC(),
	}

	stored, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	if err := s.mirrorPut(ctx, stored, raw); err != nil {
		return nil, err
	}

	return &IngestResult{
		Session: session,
		Files:   []FileSummary{summarize(stored)},
	}, nil
}

// ingestArchive expands a zip payload and persists every member through one
// transactional batch: a malformed archive or member fails the whole request
// with nothing written.
func (s *fileService) ingestArchive(ctx context.Context, req IngestRequest, session string) (*IngestResult, error) {
	raw, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	members, err := archive.Expand(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]model.UploadedFile, 0, len(members))
	for _, m := range members {
		entries = append(entries, model.UploadedFile{
			ID:            uuid.NewString(),
			Filename:      m.Name,
			Content:       base64.StdEncoding.EncodeToString(m.Content),
			FileType:      filetype.Classify(m.Name),
			Tags:          req.Tags,
			UploadSession: session,
			CreatedAt:     now,
		})
	}

	result := &IngestResult{Archive: true, Session: session}
	if len(entries) == 0 {
		result.Files = []FileSummary{}
		return result, nil
	}

	stored, err := s.repo.CreateBatch(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("save archive members: %w", err)
	}
	for i := range stored {
		if err := s.mirrorPut(ctx, &stored[i], members[i].Content); err != nil {
			return nil, err
		}
	}

	result.Files = make([]FileSummary, 0, len(stored))
	for i := range stored {
		result.Files = append(result.Files, summarize(&stored[i]))
	}
	return result, nil
}

func summarize(f *model.UploadedFile) FileSummary {
	return FileSummary{
		ID:        f.ID,
		Filename:  f.Filename,
		FileType:  f.FileType,
		CreatedAt: f.CreatedAt,
	}
}

// baseName strips path components from a submitted filepath. Backslashes are
// normalized first so Windows-style paths cannot carry directories into the
// stored filename. A path ending in a separator names a directory, not a
// file, and yields an empty name; path.Base alone would silently strip the
// trailing slash.
func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	b := path.Base(p)
	if b == "." || b == "/" {
		return ""
	}
	return b
}
