package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/ws"
)

type CreateCommentInput struct {
	Content string `json:"comment" validate:"required,max=2000"`
}

// ListComments returns every comment on a post, oldest first, with author
// names. A missing post yields an empty list.
func (s *Service) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("comments.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Order("comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a comment and notifies the post owner when the author
// is someone else.
func (s *Service) CreateComment(ctx context.Context, actor *models.User, postID string, in CreateCommentInput) (*models.Comment, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var (
		comment  models.Comment
		notified []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Take(&post, "id = ?", postID).Error; err != nil {
			return notFoundOr(err, "post")
		}

		comment = models.Comment{
			PostID:    postID,
			UserID:    actor.ID,
			Content:   in.Content,
			CreatedAt: s.now(),
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		if post.UserID != actor.ID {
			n, err := s.createNotification(tx, models.Notification{
				UserID:  post.UserID,
				ActorID: actor.ID,
				PostID:  postID,
				Type:    models.NotificationComment,
				Message: fmt.Sprintf("%s commented on your post %q", actor.Username, postLabel(post)),
			})
			if err != nil {
				return err
			}
			notified = append(notified, *n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	comment.Username = actor.Username

	s.metrics.Record(metrics.EventCommentCreated, "")
	s.events.Broadcast(ws.Event{Type: ws.EventCommentCreated, Data: comment})
	s.pushNotifications(notified)
	return &comment, nil
}

// DeleteComment removes a comment. Author or admin only.
func (s *Service) DeleteComment(ctx context.Context, actor *models.User, commentID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&comment, "id = ?", commentID).Error; err != nil {
			return notFoundOr(err, "comment")
		}
		if !canModify(actor, comment.UserID) {
			return apierror.Forbidden("only the author or an admin can delete this comment")
		}
		if err := tx.Delete(&models.Comment{}, "id = ?", commentID).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Record(metrics.EventCommentDeleted, "")
	s.events.Broadcast(ws.Event{Type: ws.EventCommentDeleted, Data: map[string]string{
		"idComment":   comment.ID,
		"idPostingan": comment.PostID,
	}})
	return nil
}
