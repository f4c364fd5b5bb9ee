package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
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
	return buf.Bytes()
}

func TestExpand(t *testing.T) {
	data := buildZip(t, map[string]string{
		"a.png":         "png-bytes",
		"docs/b.txt":    "hello",
		"deep/dir/c.md": "# Hi",
	})

	members, err := Expand(data)
	require.NoError(t, err)
	require.Len(t, members, 3)

	byName := make(map[string]string)
	for _, m := range members {
		byName[m.Name] = string(m.Content)
	}
	// Path components are stripped from member names.
	assert.Equal(t, "png-bytes", byName["a.png"])
	assert.Equal(t, "hello", byName["b.txt"])
	assert.Equal(t, "# Hi", byName["c.md"])
}

func TestExpand_SkipsDirectories(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("empty-dir/")
	require.NoError(t, err)
	w, err := zw.Create("empty-dir/file.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	members, err := Expand(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "file.txt", members[0].Name)
}

func TestExpand_InvalidArchive(t *testing.T) {
	_, err := Expand([]byte("definitely not a zip"))
	assert.ErrorIs(t, err, ErrInvalidArchive)

	_, err = Expand(nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestExpand_TraversalNamesReduced(t *testing.T) {
	data := buildZip(t, map[string]string{
		"../../etc/passwd": "oops",
	})

	members, err := Expand(data)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "passwd", members[0].Name)
}

func TestExpand_EmptyArchive(t *testing.T) {
	data := buildZip(t, nil)
	members, err := Expand(data)
	require.NoError(t, err)
	assert.Empty(t, members)
}
