package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/ws"
)

// ReactionResult is the post's counters after a reaction change.
type ReactionResult struct {
	PostID       string `json:"idPostingan"`
	LikeCount    int    `json:"likeCount"`
	DislikeCount int    `json:"dislikeCount"`
	MyReaction   string `json:"myReaction"`
}

func counterColumn(kind string) string {
	if kind == models.InteractionDislike {
		return "dislike_count"
	}
	return "like_count"
}

func incrementExpr(col string) clause.Expr {
	return gorm.Expr(col + " + 1")
}

// decrementExpr never lets a counter go below zero.
func decrementExpr(col string) clause.Expr {
	return gorm.Expr("CASE WHEN " + col + " > 0 THEN " + col + " - 1 ELSE 0 END")
}

// React records a like or dislike by actor on a post.
//
// No previous reaction: insert and increment. Same reaction again: rejected
// with CONFLICT. Opposite reaction: the row switches type and both counters
// move.
func (s *Service) React(ctx context.Context, actor *models.User, postID, kind string) (*ReactionResult, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != models.InteractionLike && kind != models.InteractionDislike {
		return nil, apierror.ValidationError("interactionType", "interactionType must be like or dislike")
	}

	var (
		result   *ReactionResult
		notified []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&post, "id = ?", postID).Error; err != nil {
			return notFoundOr(err, "post")
		}

		var existing models.Interaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, actor.ID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := s.now()
			row := models.Interaction{PostID: postID, UserID: actor.ID, Type: kind, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create interaction: %w", err)
			}
			if err := s.adjustCounters(tx, postID, map[string]interface{}{
				counterColumn(kind): incrementExpr(counterColumn(kind)),
			}); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("load interaction: %w", err)
		case existing.Type == kind:
			return apierror.Conflict("post already " + kind + "d")
		default:
			if err := tx.Model(&existing).UpdateColumns(map[string]interface{}{
				"type":       kind,
				"updated_at": s.now(),
			}).Error; err != nil {
				return fmt.Errorf("switch interaction: %w", err)
			}
			if err := s.adjustCounters(tx, postID, map[string]interface{}{
				counterColumn(existing.Type): decrementExpr(counterColumn(existing.Type)),
				counterColumn(kind):          incrementExpr(counterColumn(kind)),
			}); err != nil {
				return err
			}
		}

		r, err := readCounters(tx, postID, kind)
		if err != nil {
			return err
		}
		result = r

		if post.UserID != actor.ID {
			n, err := s.createNotification(tx, models.Notification{
				UserID:  post.UserID,
				ActorID: actor.ID,
				PostID:  postID,
				Type:    kind,
				Message: fmt.Sprintf("%s %sd your post %q", actor.Username, kind, postLabel(post)),
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

	logger.Log.Debug("Reaction recorded",
		logger.WithPostID(postID),
		logger.WithUserID(actor.ID),
		zap.String("type", kind),
	)
	s.metrics.Record(metrics.EventReaction, kind)
	s.publishCounters(result)
	s.pushNotifications(notified)
	return result, nil
}

// RemoveReaction deletes actor's reaction on a post, whichever type it is.
func (s *Service) RemoveReaction(ctx context.Context, actor *models.User, postID string) (*ReactionResult, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	var result *ReactionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&post, "id = ?", postID).Error; err != nil {
			return notFoundOr(err, "post")
		}

		var existing models.Interaction
		if err := tx.Where("post_id = ? AND user_id = ?", postID, actor.ID).Take(&existing).Error; err != nil {
			return notFoundOr(err, "reaction")
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return fmt.Errorf("delete interaction: %w", err)
		}
		if err := s.adjustCounters(tx, postID, map[string]interface{}{
			counterColumn(existing.Type): decrementExpr(counterColumn(existing.Type)),
		}); err != nil {
			return err
		}

		var err error
		result, err = readCounters(tx, postID, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("Reaction removed", logger.WithPostID(postID), logger.WithUserID(actor.ID))
	s.metrics.Record(metrics.EventReaction, "remove")
	s.publishCounters(result)
	return result, nil
}

func (s *Service) adjustCounters(tx *gorm.DB, postID string, cols map[string]interface{}) error {
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(cols).Error; err != nil {
		return fmt.Errorf("update counters: %w", err)
	}
	return nil
}

func readCounters(tx *gorm.DB, postID, mine string) (*ReactionResult, error) {
	var post models.Post
	if err := tx.Select("id", "like_count", "dislike_count").Take(&post, "id = ?", postID).Error; err != nil {
		return nil, fmt.Errorf("reload counters: %w", err)
	}
	return &ReactionResult{
		PostID:       post.ID,
		LikeCount:    post.LikeCount,
		DislikeCount: post.DislikeCount,
		MyReaction:   mine,
	}, nil
}

func (s *Service) publishCounters(r *ReactionResult) {
	// MyReaction is personal; the broadcast only carries counters.
	s.events.Broadcast(ws.Event{Type: ws.EventReactionUpdated, Data: map[string]interface{}{
		"idPostingan":  r.PostID,
		"likeCount":    r.LikeCount,
		"dislikeCount": r.DislikeCount,
	}})
}
