package model

import "time"

// FileType is the closed classification assigned to a file at ingestion time.
// It never changes after the record is created.
type FileType string

const (
	FileTypeMarkdown FileType = "markdown"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// Valid reports whether t is one of the three known classifications.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeMarkdown, FileTypeImage, FileTypeDocument:
		return true
	}
	return false
}

// UploadedFile represents a stored file record.
// Content holds the payload base64-encoded so the persisted row stays a single
// text column regardless of the underlying bytes.
// This is a pure domain model with no database-specific dependencies or tags
// beyond JSON serialization; it can be used across layers without coupling to
// persistence.
type UploadedFile struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Content       string    `json:"-"`
	FileType      FileType  `json:"filetype"`
	Tags          Tags      `json:"tags,omitempty"`
	UploadSession string    `json:"upload_session"`
	CreatedAt     time.Time `json:"created_at"`
}
