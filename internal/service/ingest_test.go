package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"mdrepo/internal/archive"
	"mdrepo/internal/model"
	"mdrepo/internal/render"
	repoMocks "mdrepo/internal/repository/mocks"
	"mdrepo/internal/storage"
	storeMocks "mdrepo/internal/storage/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<title>__page_title__</title>__navigation__<h1>__title__</h1>__tags__<main>__content__</main>`

func newTestService(repo *repoMocks.MockFileRepository) FileService {
	return NewFileService(repo, nil, render.NewTemplate(testTemplate))
}

func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestIngest_SingleFile(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	content := base64.StdEncoding.EncodeToString([]byte("# Hi"))
	tags := model.Tags{"category": {Kind: model.TagString, Str: "docs"}}

	mRepo.On("Create", ctx, mock.MatchedBy(func(f *model.UploadedFile) bool {
		return f.Filename == "note.md" &&
			f.FileType == model.FileTypeMarkdown &&
			f.Content == content && // stored as-is, no re-encoding
			f.UploadSession != "" &&
			!f.CreatedAt.IsZero()
	})).Return(&model.UploadedFile{
		ID:       "gen-id",
		Filename: "note.md",
		FileType: model.FileTypeMarkdown,
		Tags:     tags,
	}, nil)

	res, err := svc.Ingest(ctx, IngestRequest{
		Filepath:      "some/dir/note.md",
		ContentBase64: content,
		Tags:          tags,
	})

	require.NoError(t, err)
	assert.False(t, res.Archive)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "gen-id", res.Files[0].ID)
	assert.Equal(t, model.FileTypeMarkdown, res.Files[0].FileType)
	_, err = uuid.Parse(res.Session)
	assert.NoError(t, err)
	mRepo.AssertExpectations(t)
}

func TestIngest_InvalidBase64(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	_, err := svc.Ingest(context.Background(), IngestRequest{
		Filepath:      "note.md",
		ContentBase64: "not!!base64",
	})

	assert.ErrorIs(t, err, ErrInvalidPayload)
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_EmptyFilename(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	// Paths naming a directory rather than a file must be rejected, not
	// ingested under the last path component.
	for _, filepath := range []string{"dir/", `dir\`, "some/nested/dir/", "/", ""} {
		_, err := svc.Ingest(context.Background(), IngestRequest{
			Filepath:      filepath,
			ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")),
		})

		assert.ErrorIs(t, err, ErrInvalidPayload, "filepath %q", filepath)
	}
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_Archive(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	payload := buildZip(t, map[string]string{
		"a.png":      "png-bytes",
		"docs/b.txt": "hello",
	})

	mRepo.On("CreateBatch", ctx, mock.MatchedBy(func(files []model.UploadedFile) bool {
		if len(files) != 2 {
			return false
		}
		byName := make(map[string]model.UploadedFile)
		for _, f := range files {
			byName[f.Filename] = f
		}
		a, okA := byName["a.png"]
		b, okB := byName["b.txt"]
		return okA && okB &&
			a.FileType == model.FileTypeImage &&
			b.FileType == model.FileTypeDocument &&
			a.UploadSession == b.UploadSession &&
			a.Content == base64.StdEncoding.EncodeToString([]byte("png-bytes")) &&
			b.Content == base64.StdEncoding.EncodeToString([]byte("hello"))
	})).Return([]model.UploadedFile{
		{ID: "id-a", Filename: "a.png", FileType: model.FileTypeImage, CreatedAt: time.Now().UTC()},
		{ID: "id-b", Filename: "b.txt", FileType: model.FileTypeDocument, CreatedAt: time.Now().UTC()},
	}, nil)

	res, err := svc.Ingest(ctx, IngestRequest{
		Filepath:      "bundle.zip",
		ContentBase64: payload,
	})

	require.NoError(t, err)
	assert.True(t, res.Archive)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "id-a", res.Files[0].ID)
	assert.Equal(t, "id-b", res.Files[1].ID)
	mRepo.AssertExpectations(t)
}

func TestIngest_ArchiveUppercaseExtension(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	payload := buildZip(t, map[string]string{"a.txt": "x"})

	mRepo.On("CreateBatch", ctx, mock.Anything).
		Return([]model.UploadedFile{{ID: "id-a", Filename: "a.txt"}}, nil)

	res, err := svc.Ingest(ctx, IngestRequest{Filepath: "BUNDLE.ZIP", ContentBase64: payload})

	require.NoError(t, err)
	assert.True(t, res.Archive)
}

func TestIngest_InvalidArchive(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	_, err := svc.Ingest(context.Background(), IngestRequest{
		Filepath:      "bundle.zip",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("not a zip")),
	})

	assert.ErrorIs(t, err, archive.ErrInvalidArchive)
	mRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestIngest_EmptyArchive(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := newTestService(mRepo)

	res, err := svc.Ingest(context.Background(), IngestRequest{
		Filepath:      "bundle.zip",
		ContentBase64: buildZip(t, nil),
	})

	require.NoError(t, err)
	assert.True(t, res.Archive)
	assert.Empty(t, res.Files)
	mRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestIngest_MirrorsDecodedContent(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewFileService(mRepo, mStore, render.NewTemplate(testTemplate))

	raw := []byte("pdf-bytes")
	content := base64.StdEncoding.EncodeToString(raw)
	stored := &model.UploadedFile{ID: "gen-id", Filename: "report.pdf", FileType: model.FileTypeDocument}

	mRepo.On("Create", ctx, mock.Anything).Return(stored, nil)
	mStore.On("Put", ctx, "files/gen-id.pdf", mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
		return opt.Size == int64(len(raw)) &&
			opt.ContentType == "application/pdf" &&
			opt.Metadata["original-filename"] == "report.pdf"
	})).Return(nil)

	_, err := svc.Ingest(ctx, IngestRequest{Filepath: "report.pdf", ContentBase64: content})

	require.NoError(t, err)
	mStore.AssertExpectations(t)
}

func TestIngest_MirrorFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewFileService(mRepo, mStore, render.NewTemplate(testTemplate))

	stored := &model.UploadedFile{ID: "gen-id", Filename: "report.pdf"}
	mRepo.On("Create", ctx, mock.Anything).Return(stored, nil)
	mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable"))

	_, err := svc.Ingest(ctx, IngestRequest{
		Filepath:      "report.pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")),
	})

	assert.ErrorContains(t, err, "mirror report.pdf")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record and mirror object", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		mStore := new(storeMocks.MockStorage)
		svc := NewFileService(mRepo, mStore, render.NewTemplate(testTemplate))

		mRepo.On("FindByID", ctx, "some-id").
			Return(&model.UploadedFile{ID: "some-id", Filename: "pic.png"}, nil)
		mStore.On("Delete", ctx, "files/some-id.png").Return(nil)
		mRepo.On("Delete", ctx, "some-id").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "some-id"))
		mRepo.AssertExpectations(t)
		mStore.AssertExpectations(t)
	})

	t.Run("missing id", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		svc := newTestService(mRepo)

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newTestService(new(repoMocks.MockFileRepository))
		assert.ErrorIs(t, svc.Delete(ctx, ""), ErrIDRequired)
	})
}
