package storage

import (
	"context"
	"io"
)

// MaxUploadBytes caps accepted image uploads at 5 MiB.
const MaxUploadBytes = 5 * 1024 * 1024

// AllowedImageTypes is the MIME allow-list for workout images.
var AllowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// IsAllowedImageType reports whether the content type is an accepted
// image format.
func IsAllowedImageType(contentType string) bool {
	_, ok := AllowedImageTypes[contentType]
	return ok
}

// FileStorage defines the interface for persisting uploaded files.
// Save consumes the file body and returns a stable reference (a relative
// path for the local backend, an absolute URL for S3) that can be stored
// on a workout entry and later resolved by any HTTP client.
type FileStorage interface {
	Save(ctx context.Context, storedName, contentType string, body io.Reader) (string, error)

	// Delete removes a previously saved file. Unknown references are not
	// an error.
	Delete(ctx context.Context, ref string) error
}
