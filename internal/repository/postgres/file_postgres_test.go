package postgres

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"mdrepo/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileCols = []string{"id", "filename", "content", "filetype", "tags", "upload_session", "created_at"}

func testFile() *model.UploadedFile {
	return &model.UploadedFile{
		ID:            "11111111-1111-1111-1111-111111111111",
		Filename:      "note.md",
		Content:       base64.StdEncoding.EncodeToString([]byte("# Hi")),
		FileType:      model.FileTypeMarkdown,
		Tags:          model.Tags{"category": {Kind: model.TagString, Str: "docs"}},
		UploadSession: "22222222-2222-2222-2222-222222222222",
		CreatedAt:     time.Now().UTC(),
	}
}

func fileRow(f *model.UploadedFile) *sqlmock.Rows {
	tags, _ := f.Tags.Value()
	return sqlmock.NewRows(fileCols).
		AddRow(f.ID, f.Filename, f.Content, f.FileType, tags, f.UploadSession, f.CreatedAt)
}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	f := testFile()

	tags, _ := f.Tags.Value()
	mock.ExpectQuery("INSERT INTO uploaded_files").
		WithArgs(f.ID, f.Filename, f.Content, f.FileType, tags, f.UploadSession, f.CreatedAt).
		WillReturnRows(fileRow(f))

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, f.ID, result.ID)
	assert.Equal(t, f.Tags, result.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_CreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("commits all rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewFilePostgres(db)
		a := testFile()
		b := testFile()
		b.ID = "33333333-3333-3333-3333-333333333333"
		b.Filename = "pic.png"
		b.FileType = model.FileTypeImage

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO uploaded_files").WillReturnRows(fileRow(a))
		mock.ExpectQuery("INSERT INTO uploaded_files").WillReturnRows(fileRow(b))
		mock.ExpectCommit()

		stored, err := repo.CreateBatch(ctx, []model.UploadedFile{*a, *b})

		assert.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, a.ID, stored[0].ID)
		assert.Equal(t, b.ID, stored[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewFilePostgres(db)
		a := testFile()
		b := testFile()
		b.ID = "33333333-3333-3333-3333-333333333333"

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO uploaded_files").WillReturnRows(fileRow(a))
		mock.ExpectQuery("INSERT INTO uploaded_files").WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		stored, err := repo.CreateBatch(ctx, []model.UploadedFile{*a, *b})

		assert.Error(t, err)
		assert.Nil(t, stored)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := testFile()
		mock.ExpectQuery("SELECT (.+) FROM uploaded_files WHERE id = ?").
			WithArgs(f.ID).
			WillReturnRows(fileRow(f))

		got, err := repo.FindByID(ctx, f.ID)

		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, f.Filename, got.Filename)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM uploaded_files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, got)
	})
}

func TestFilePostgres_FindByFilename(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	f := testFile()
	// The query must resolve duplicates newest-first.
	mock.ExpectQuery("SELECT (.+) FROM uploaded_files WHERE filename = (.+) ORDER BY created_at DESC, id DESC LIMIT 1").
		WithArgs("note.md").
		WillReturnRows(fileRow(f))

	got, err := repo.FindByFilename(ctx, "note.md")

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		a := testFile()
		b := testFile()
		b.ID = "33333333-3333-3333-3333-333333333333"
		b.Filename = "pic.png"
		b.Tags = nil

		rows := sqlmock.NewRows(fileCols)
		tags, _ := a.Tags.Value()
		rows.AddRow(a.ID, a.Filename, a.Content, a.FileType, tags, a.UploadSession, a.CreatedAt)
		rows.AddRow(b.ID, b.Filename, b.Content, b.FileType, nil, b.UploadSession, b.CreatedAt)

		mock.ExpectQuery("SELECT (.+) FROM uploaded_files ORDER BY created_at DESC").
			WillReturnRows(rows)

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, a.Tags, items[0].Tags)
		assert.Nil(t, items[1].Tags)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM uploaded_files ORDER BY created_at DESC").
			WillReturnRows(sqlmock.NewRows(fileCols))

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM uploaded_files WHERE id = ?").
			WithArgs("some-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "some-id"))
	})

	t.Run("missing row reported", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM uploaded_files WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "missing")
		assert.True(t, IsNoRowsError(err))
	})
}
