package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes images under a directory that the HTTP server
// exposes at /uploads.
type LocalUploader struct {
	dir     string
	baseURL string
}

var _ Uploader = (*LocalUploader)(nil)

func NewLocalUploader(dir, publicBaseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(publicBaseURL, "/") + "/uploads"}, nil
}

// Dir is the root served at /uploads.
func (u *LocalUploader) Dir() string {
	return u.dir
}

func (u *LocalUploader) UploadImage(ctx context.Context, data []byte, contentType, key string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid object key %q", key)
	}

	path := filepath.Join(u.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         u.baseURL + "/" + key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}
