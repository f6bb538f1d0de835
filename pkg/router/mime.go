package router

import (
	"mime"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// Types the Go runtime does not know about unless the host ships a
// mime.types file.
var extraTypes = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".text": "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".ico":  "image/x-icon",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
}

func init() {
	for ext, typ := range extraTypes {
		if mime.TypeByExtension(ext) == "" {
			mime.AddExtensionType(ext, typ)
		}
	}
}

// contentType guesses the media type of p from its extension.
func contentType(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return defaultContentType
}

func isText(ct string) bool {
	return strings.HasPrefix(ct, "text/")
}
