package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mdrepo/internal/model"
	"mdrepo/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// IsNoRowsError reports whether err means "no matching row".
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const fileColumns = "id, filename, content, filetype, tags, upload_session, created_at"

const insertQuery = `
	INSERT INTO uploaded_files (id, filename, content, filetype, tags, upload_session, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + fileColumns

func scanFile(row interface{ Scan(...any) error }) (*model.UploadedFile, error) {
	var f model.UploadedFile
	if err := row.Scan(
		&f.ID,
		&f.Filename,
		&f.Content,
		&f.FileType,
		&f.Tags,
		&f.UploadSession,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.UploadedFile) (*model.UploadedFile, error) {
	row := r.db.QueryRowContext(ctx, insertQuery,
		f.ID,
		f.Filename,
		f.Content,
		f.FileType,
		f.Tags,
		f.UploadSession,
		f.CreatedAt,
	)
	return scanFile(row)
}

// CreateBatch inserts every record in a single transaction. The transaction
// is rolled back on the first failing insert, so a bad archive member never
// leaves earlier members behind.
func (r *FilePostgres) CreateBatch(ctx context.Context, files []model.UploadedFile) ([]model.UploadedFile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stored := make([]model.UploadedFile, 0, len(files))
	for i := range files {
		f := &files[i]
		row := tx.QueryRowContext(ctx, insertQuery,
			f.ID,
			f.Filename,
			f.Content,
			f.FileType,
			f.Tags,
			f.UploadSession,
			f.CreatedAt,
		)
		out, err := scanFile(row)
		if err != nil {
			return nil, fmt.Errorf("batch insert %s: %w", f.Filename, err)
		}
		stored = append(stored, *out)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch insert: %w", err)
	}
	return stored, nil
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.UploadedFile, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM uploaded_files
		WHERE id = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByFilename resolves duplicate filenames to the most recent row.
func (r *FilePostgres) FindByFilename(ctx context.Context, filename string) (*model.UploadedFile, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM uploaded_files
		WHERE filename = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, filename))
}

// List returns all files, newest first.
func (r *FilePostgres) List(ctx context.Context) ([]model.UploadedFile, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM uploaded_files
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UploadedFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a file by ID and reports a missing row as sql.ErrNoRows.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM uploaded_files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
