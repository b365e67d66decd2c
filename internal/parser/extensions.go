package parser

import (
	"path/filepath"
	"strings"
)

// VideoExtensions are the file extensions the Completion Monitor treats as
// importable payloads when walking a finished torrent's directory.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
	".wmv":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".m2ts": true,
	".vob":  true,
}

// IsVideoFile reports whether filename has a known video extension.
func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}
