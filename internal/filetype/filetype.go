// Package filetype classifies filenames into the closed set of stored file
// types and maps extensions to response mime types. Both functions are total:
// every filename resolves to something.
package filetype

import (
	"strings"

	"mdrepo/internal/model"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "svg": {},
}

// mimeTypes is the closed extension -> mime lookup used when serving raw
// content. Unknown extensions fall back to application/octet-stream.
var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"html": "text/html",
	"stl":  "text/stl",
}

// Ext returns the lowercase extension of filename without the dot, or an
// empty string when there is none.
func Ext(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// Classify maps a filename to its stored file type from the extension alone.
func Classify(filename string) model.FileType {
	switch ext := Ext(filename); {
	case ext == "md" || ext == "markdown":
		return model.FileTypeMarkdown
	default:
		if _, ok := imageExtensions[ext]; ok {
			return model.FileTypeImage
		}
		return model.FileTypeDocument
	}
}

// MimeByExtension derives the response content type for raw passthrough.
// Only the extension matters here; the stored classification does not
// influence the result.
func MimeByExtension(filename string) string {
	if mt, ok := mimeTypes[Ext(filename)]; ok {
		return mt
	}
	return "application/octet-stream"
}
