// Package storage persists uploaded post images.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/sujalbistaa/suara/internal/apierror"
)

// MaxImageSize is the largest decoded image accepted, in bytes.
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Uploader stores image bytes and returns where they can be fetched.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, contentType, key string) (*UploadResult, error)
}

// Image is a decoded, validated upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImage accepts raw base64 or a data URL ("data:image/png;base64,...")
// and validates the decoded bytes by content, not by the declared type.
func DecodeImage(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apierror.ValidationError("image", "image data is required")
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, apierror.ValidationError("image", "malformed data URL")
		}
		payload = payload[comma+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, apierror.ValidationError("image", "image exceeds 5 MB")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, apierror.ValidationError("image", "image is not valid base64")
		}
	}
	if len(data) == 0 {
		return nil, apierror.ValidationError("image", "image data is required")
	}
	if len(data) > MaxImageSize {
		return nil, apierror.ValidationError("image", "image exceeds 5 MB")
	}

	mime := mimetype.Detect(data).String()
	ext, ok := imageExtensions[mime]
	if !ok {
		return nil, apierror.ValidationError("image", "unsupported image type "+mime)
	}
	return &Image{Data: data, ContentType: mime, Extension: ext}, nil
}

// ObjectKey lays images out as images/{year}/{month}/{userID}/{uuid}{ext}.
func ObjectKey(now time.Time, userID, ext string) string {
	return fmt.Sprintf("images/%d/%02d/%s/%s%s", now.Year(), now.Month(), userID, uuid.NewString(), ext)
}
