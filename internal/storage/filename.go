package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeBaseName strips the extension and replaces anything outside
// [a-zA-Z0-9_-] with underscores so client-supplied names cannot escape
// the upload directory or break URLs.
func SanitizeBaseName(originalName string) string {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	safe := unsafeChars.ReplaceAllString(name, "_")
	if safe == "" {
		safe = "upload"
	}
	return safe
}

// StoredName builds a collision-resistant stored file name: a unix-millis
// timestamp prefix, the sanitized base name and the original extension.
func StoredName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), SanitizeBaseName(originalName), ext)
}
