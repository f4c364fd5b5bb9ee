package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"mdrepo/internal/model"
)

// FileRepository defines data access for uploaded files using SQL queries
// only. No business logic here — strictly persistence operations.
type FileRepository interface {
	// Create inserts a single file record and returns the stored row.
	Create(ctx context.Context, f *model.UploadedFile) (*model.UploadedFile, error)

	// CreateBatch inserts all records inside one transaction. Either every
	// row is committed or none is; a failure on any insert rolls the whole
	// batch back.
	CreateBatch(ctx context.Context, files []model.UploadedFile) ([]model.UploadedFile, error)

	// FindByID returns a file by its ID. Returns sql.ErrNoRows when absent.
	FindByID(ctx context.Context, id string) (*model.UploadedFile, error)

	// FindByFilename resolves a filename to a single record. Filenames are
	// not unique; duplicates resolve to the most recently created row
	// (created_at desc, id desc as tie-break). Returns sql.ErrNoRows when
	// no row matches.
	FindByFilename(ctx context.Context, filename string) (*model.UploadedFile, error)

	// List returns every stored file ordered by created_at descending.
	List(ctx context.Context) ([]model.UploadedFile, error)

	// Delete removes a file by ID. Returns sql.ErrNoRows when no row was
	// deleted, so callers can report the miss.
	Delete(ctx context.Context, id string) error
}
