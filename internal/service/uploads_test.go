package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/storage"
)

const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type memUploader struct {
	keys []string
	err  error
}

func (m *memUploader) UploadImage(_ context.Context, data []byte, contentType, key string) (*storage.UploadResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.keys = append(m.keys, key)
	return &storage.UploadResult{
		Key:         key,
		URL:         "https://cdn.example.test/" + key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func TestUploadImage(t *testing.T) {
	up := &memUploader{}
	f := newFixture(t, up)
	u := f.user(t, "oscar")

	res, err := f.svc.UploadImage(context.Background(), u, UploadImageInput{Image: "data:image/png;base64," + pixelPNG, FileName: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasPrefix(res.Key, "images/2024/03/"+u.ID+"/"), res.Key)
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Len(t, up.keys, 1)
}

func TestUploadImageRejects(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, nil)
	u := f.user(t, "puji")
	_, err := f.svc.UploadImage(ctx, u, UploadImageInput{Image: pixelPNG})
	assert.True(t, apierror.IsCode(err, apierror.ErrBadRequest), "no backend configured")

	up := &memUploader{}
	f = newFixture(t, up)
	u = f.user(t, "qori")
	_, err = f.svc.UploadImage(ctx, nil, UploadImageInput{Image: pixelPNG})
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
	_, err = f.svc.UploadImage(ctx, u, UploadImageInput{Image: "aGVsbG8="})
	assert.True(t, apierror.IsCode(err, apierror.ErrValidation))
	assert.Empty(t, up.keys)

	up.err = errors.New("bucket unreachable")
	_, err = f.svc.UploadImage(ctx, u, UploadImageInput{Image: pixelPNG})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(apierror.From(err), apierror.ErrInternalError))
}
