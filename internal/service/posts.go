package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/ws"
)

type CreatePostInput struct {
	Judul     string `json:"judul" validate:"max=200"`
	Deskripsi string `json:"deskripsi" validate:"required,max=5000"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

// UpdatePostInput leaves nil fields untouched. The creation timestamp is
// never part of an update.
type UpdatePostInput struct {
	Judul     *string `json:"judul" validate:"omitempty,max=200"`
	Deskripsi *string `json:"deskripsi" validate:"omitempty,max=5000"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

type ListPostsQuery struct {
	UserID string
	Page   Page
}

type PostList struct {
	Posts []models.Post `json:"posts"`
	Total int64         `json:"total"`
	Page  Page          `json:"page"`
}

func (s *Service) postsWithAuthor(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = posts.user_id")
}

// CreatePost stores a new post owned by actor with zeroed counters.
func (s *Service) CreatePost(ctx context.Context, actor *models.User, in CreatePostInput) (*models.Post, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.Judul = strings.TrimSpace(in.Judul)
	in.Deskripsi = strings.TrimSpace(in.Deskripsi)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		UserID:    actor.ID,
		Judul:     in.Judul,
		Deskripsi: in.Deskripsi,
		ImageURL:  in.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Username = actor.Username

	s.metrics.Record(metrics.EventPostCreated, "")
	s.events.Broadcast(ws.Event{Type: ws.EventPostCreated, Data: post})
	return post, nil
}

// ListPosts returns posts newest first. When actor is set each post carries
// the actor's own reaction.
func (s *Service) ListPosts(ctx context.Context, actor *models.User, q ListPostsQuery) (*PostList, error) {
	page := q.Page.normalize()

	count := s.db.WithContext(ctx).Model(&models.Post{})
	query := s.postsWithAuthor(ctx)
	if q.UserID != "" {
		count = count.Where("user_id = ?", q.UserID)
		query = query.Where("posts.user_id = ?", q.UserID)
	}

	var total int64
	if err := count.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts := make([]models.Post, 0, page.Limit)
	err := query.
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.attachReactions(ctx, actor, posts); err != nil {
		return nil, err
	}
	return &PostList{Posts: posts, Total: total, Page: page}, nil
}

// GetPost returns one post with its author name.
func (s *Service) GetPost(ctx context.Context, actor *models.User, postID string) (*models.Post, error) {
	var post models.Post
	if err := s.postsWithAuthor(ctx).Where("posts.id = ?", postID).Take(&post).Error; err != nil {
		return nil, notFoundOr(err, "post")
	}
	list := []models.Post{post}
	if err := s.attachReactions(ctx, actor, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Service) attachReactions(ctx context.Context, actor *models.User, posts []models.Post) error {
	if actor == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var mine []models.Interaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", actor.ID, ids).
		Find(&mine).Error
	if err != nil {
		return fmt.Errorf("load reactions: %w", err)
	}

	byPost := make(map[string]string, len(mine))
	for _, in := range mine {
		byPost[in.PostID] = in.Type
	}
	for i := range posts {
		posts[i].MyReaction = byPost[posts[i].ID]
	}
	return nil
}

// UpdatePost edits title, description and image. Owner or admin only.
func (s *Service) UpdatePost(ctx context.Context, actor *models.User, postID string, in UpdatePostInput) (*models.Post, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.Judul = trimPtr(in.Judul)
	in.Deskripsi = trimPtr(in.Deskripsi)
	in.ImageURL = trimPtr(in.ImageURL)
	if in.Deskripsi != nil && *in.Deskripsi == "" {
		return nil, apierror.ValidationError("deskripsi", "deskripsi is required")
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	var (
		post     models.Post
		notified []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&post, "id = ?", postID).Error; err != nil {
			return notFoundOr(err, "post")
		}
		if !canModify(actor, post.UserID) {
			return apierror.Forbidden("only the owner or an admin can edit this post")
		}

		// created_at is never written after insert.
		updates := map[string]interface{}{"updated_at": s.now()}
		if in.Judul != nil {
			updates["judul"] = *in.Judul
		}
		if in.Deskripsi != nil {
			updates["deskripsi"] = *in.Deskripsi
		}
		if in.ImageURL != nil {
			updates["image_url"] = *in.ImageURL
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(updates).Error; err != nil {
			return fmt.Errorf("update post: %w", err)
		}

		if actor.ID != post.UserID {
			n, err := s.createNotification(tx, models.Notification{
				UserID:  post.UserID,
				ActorID: actor.ID,
				PostID:  post.ID,
				Type:    models.NotificationModeration,
				Message: fmt.Sprintf("An admin edited your post %q", postLabel(post)),
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

	updated, err := s.GetPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	s.metrics.Record(metrics.EventPostUpdated, "")
	s.events.Broadcast(ws.Event{Type: ws.EventPostUpdated, Data: updated})
	s.pushNotifications(notified)
	return updated, nil
}

// DeletePost removes a post together with its interactions, comments and
// notifications in one transaction. Owner or admin only.
func (s *Service) DeletePost(ctx context.Context, actor *models.User, postID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	var notified []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Take(&post, "id = ?", postID).Error; err != nil {
			return notFoundOr(err, "post")
		}
		if !canModify(actor, post.UserID) {
			return apierror.Forbidden("only the owner or an admin can delete this post")
		}

		if err := deletePostCascade(tx, []string{post.ID}); err != nil {
			return err
		}

		if actor.ID != post.UserID {
			n, err := s.createNotification(tx, models.Notification{
				UserID:  post.UserID,
				ActorID: actor.ID,
				Type:    models.NotificationModeration,
				Message: fmt.Sprintf("An admin removed your post %q", postLabel(post)),
			})
			if err != nil {
				return err
			}
			notified = append(notified, *n)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info("Post deleted",
		logger.WithPostID(postID),
		logger.WithUserID(actor.ID),
		zap.Bool("moderated", len(notified) > 0),
	)
	s.metrics.Record(metrics.EventPostDeleted, "")
	s.events.Broadcast(ws.Event{Type: ws.EventPostDeleted, Data: map[string]string{"idPostingan": postID}})
	s.pushNotifications(notified)
	return nil
}

// deletePostCascade must run inside a transaction.
func deletePostCascade(tx *gorm.DB, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	steps := []struct {
		what  string
		model interface{}
		where string
	}{
		{"interactions", &models.Interaction{}, "post_id IN ?"},
		{"comments", &models.Comment{}, "post_id IN ?"},
		{"notifications", &models.Notification{}, "post_id IN ?"},
		{"posts", &models.Post{}, "id IN ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, postIDs).Delete(step.model).Error; err != nil {
			return fmt.Errorf("delete %s: %w", step.what, err)
		}
	}
	return nil
}

func postLabel(p models.Post) string {
	if p.Judul != "" {
		return p.Judul
	}
	desc := []rune(p.Deskripsi)
	if len(desc) > 40 {
		return string(desc[:40]) + "…"
	}
	return string(desc)
}
