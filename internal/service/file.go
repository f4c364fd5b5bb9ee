package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"mdrepo/internal/filetype"
	"mdrepo/internal/model"
	"mdrepo/internal/render"
	"mdrepo/internal/repository"
	"mdrepo/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("file not found")
	// ErrInvalidPayload means the request payload was not valid base64.
	ErrInvalidPayload = errors.New("content is not valid base64")
	// ErrCorruptContent means a persisted row failed to base64-decode. This
	// is an invariant violation in stored data, not a client error.
	ErrCorruptContent = errors.New("stored content is not valid base64")
)

// FileSummary is the per-entry result reported back after ingestion.
type FileSummary struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"`
	FileType  model.FileType `json:"filetype"`
	CreatedAt time.Time      `json:"created_at"`
}

// IngestRequest carries one upload: a single file or a zip archive.
type IngestRequest struct {
	Filepath      string
	ContentBase64 string
	Tags          model.Tags
}

// IngestResult reports what one upload request persisted. Archive is true
// when the payload was expanded from a zip, in which case Files holds one
// summary per member.
type IngestResult struct {
	Archive bool
	Session string
	Files   []FileSummary
}

// RenderedPayload is an HTTP-ready body with its content type.
type RenderedPayload struct {
	ContentType string
	Body        []byte
}

// FileService defines the use cases for the file repository.
type FileService interface {
	// Ingest classifies and persists an upload; zip payloads are expanded
	// member-by-member and committed as one atomic batch.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Render resolves a stored file by name and produces either templated
	// HTML (markdown) or the raw bytes with an extension-derived mime type.
	Render(ctx context.Context, filename string) (*RenderedPayload, error)

	// Home builds the grouped index page.
	Home(ctx context.Context) (string, error)

	// List returns all stored files, newest first.
	List(ctx context.Context) ([]model.UploadedFile, error)

	// Delete removes a file by ID from the repository and, when a mirror is
	// configured, from object storage.
	Delete(ctx context.Context, id string) error
}

// fileService is a concrete implementation of FileService.
// mirror may be nil when no object storage is configured.
type fileService struct {
	repo   repository.FileRepository
	mirror storage.Storage
	tmpl   *render.Template
}

// NewFileService constructs a new FileService.
func NewFileService(repo repository.FileRepository, mirror storage.Storage, tmpl *render.Template) FileService {
	return &fileService{repo: repo, mirror: mirror, tmpl: tmpl}
}

// List returns all stored files ordered by creation time descending.
func (s *fileService) List(ctx context.Context) ([]model.UploadedFile, error) {
	return s.repo.List(ctx)
}

// Delete removes the record and its mirrored object, if any.
func (s *fileService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, mirrorKey(f)); err != nil {
			return fmt.Errorf("delete mirror object: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// mirrorKey derives the object key for a record's mirrored content.
func mirrorKey(f *model.UploadedFile) string {
	return "files/" + f.ID + filepath.Ext(f.Filename)
}

// mirrorPut writes decoded content to object storage when a mirror is
// configured. The database row is authoritative; the mirror is a
// convenience copy for operators.
func (s *fileService) mirrorPut(ctx context.Context, f *model.UploadedFile, raw []byte) error {
	if s.mirror == nil {
		return nil
	}
	err := s.mirror.Put(ctx, mirrorKey(f), bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: filetype.MimeByExtension(f.Filename),
		Metadata: map[string]string{
			"original-filename": f.Filename,
			"upload-session":    f.UploadSession,
		},
	})
	if err != nil {
		return fmt.Errorf("mirror %s: %w", f.Filename, err)
	}
	return nil
}
