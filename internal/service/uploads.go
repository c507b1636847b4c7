package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/storage"
)

type UploadImageInput struct {
	Image    string `json:"image"`
	FileName string `json:"fileName"`
}

// UploadImage validates a base64 image and hands it to the configured
// backend. The returned URL goes into a post's imageUrl.
func (s *Service) UploadImage(ctx context.Context, actor *models.User, in UploadImageInput) (*storage.UploadResult, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, apierror.BadRequest("image uploads are not configured")
	}

	img, err := storage.DecodeImage(in.Image)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey(s.now(), actor.ID, img.Extension)
	res, err := s.uploader.UploadImage(ctx, img.Data, img.ContentType, key)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	logger.Log.Info("Image uploaded",
		logger.WithUserID(actor.ID),
		zap.String("key", res.Key),
	)
	s.metrics.Record(metrics.EventImageUploaded, img.ContentType)
	return res, nil
}
