// Package archive expands uploaded zip payloads into their member files.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrInvalidArchive is returned when the payload is not a readable zip
// stream or any member fails to decompress. Callers surface it as a client
// error; the request is never partially applied.
var ErrInvalidArchive = errors.New("invalid zip archive")

// Member is one regular file extracted from an archive.
type Member struct {
	Name    string
	Content []byte
}

// Expand reads a zip archive fully into memory and returns its regular-file
// members in central-directory order. Directory entries are skipped and
// member names are reduced to their base name, so a crafted archive cannot
// smuggle path components into stored filenames.
func Expand(archiveBytes []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	members := make([]Member, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
		if name == "." || name == "/" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidArchive, f.Name, err)
		}

		members = append(members, Member{Name: name, Content: content})
	}
	return members, nil
}
