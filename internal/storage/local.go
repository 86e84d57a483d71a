package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PublicUploadPrefix is the URL path under which the HTTP surface serves
// the local upload directory.
const PublicUploadPrefix = "/uploads"

// localStorage implements FileStorage on a plain directory served
// statically by the HTTP layer.
type localStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed and returns a
// directory-backed file store.
func NewLocalStorage(dir string) (FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	log.Printf("Local file storage initialized at %s", dir)
	return &localStorage{dir: dir}, nil
}

// Save writes the body under storedName and returns the public
// "/uploads/<name>" reference. storedName must already be sanitized.
func (s *localStorage) Save(ctx context.Context, storedName, contentType string, body io.Reader) (string, error) {
	if filepath.Base(storedName) != storedName {
		return "", fmt.Errorf("invalid stored name %q", storedName)
	}

	path := filepath.Join(s.dir, storedName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", err)
	}

	return PublicUploadPrefix + "/" + storedName, nil
}

// Delete removes the file behind a "/uploads/<name>" reference. A missing
// file is treated as already deleted.
func (s *localStorage) Delete(ctx context.Context, ref string) error {
	name := filepath.Base(strings.TrimPrefix(ref, PublicUploadPrefix+"/"))
	if name == "" || name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload file: %w", err)
	}
	return nil
}
