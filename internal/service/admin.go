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

// Stats is the admin dashboard summary.
type Stats struct {
	Users         int64 `json:"totalUsers"`
	Admins        int64 `json:"totalAdmins"`
	Posts         int64 `json:"totalPosts"`
	Comments      int64 `json:"totalComments"`
	Likes         int64 `json:"totalLikes"`
	Dislikes      int64 `json:"totalDislikes"`
	PostsLastWeek int64 `json:"postsLastWeek"`
}

type ListUsersQuery struct {
	Search string
	Page   Page
}

type UserList struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  Page          `json:"page"`
}

type SetRoleInput struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// Stats counts users, content and reactions.
func (s *Service) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	weekAgo := s.now().AddDate(0, 0, -7)

	var st Stats
	counts := []struct {
		what  string
		query *gorm.DB
		dst   *int64
	}{
		{"users", db.Model(&models.User{}), &st.Users},
		{"admins", db.Model(&models.User{}).Where("role = ?", models.RoleAdmin), &st.Admins},
		{"posts", db.Model(&models.Post{}), &st.Posts},
		{"comments", db.Model(&models.Comment{}), &st.Comments},
		{"likes", db.Model(&models.Interaction{}).Where("type = ?", models.InteractionLike), &st.Likes},
		{"dislikes", db.Model(&models.Interaction{}).Where("type = ?", models.InteractionDislike), &st.Dislikes},
		{"recent posts", db.Model(&models.Post{}).Where("created_at >= ?", weekAgo), &st.PostsLastWeek},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.what, err)
		}
	}
	return &st, nil
}

// ListUsers pages through accounts, newest first, optionally filtered by a
// username or email fragment.
func (s *Service) ListUsers(ctx context.Context, actor *models.User, q ListUsersQuery) (*UserList, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	page := q.Page.normalize()

	query := s.db.WithContext(ctx).Model(&models.User{})
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(username) LIKE ? OR email LIKE ?", like, like)
	}

	out := &UserList{Users: make([]models.User, 0), Page: page}
	if err := query.Count(&out.Total).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out.Users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// SetUserRole promotes or demotes another account.
func (s *Service) SetUserRole(ctx context.Context, actor *models.User, userID string, in SetRoleInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := s.check(in); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, apierror.Forbidden("admins cannot change their own role")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&user, "id = ?", userID).Error; err != nil {
			return notFoundOr(err, "user")
		}
		if user.Role == in.Role {
			return nil
		}
		if err := tx.Model(&user).UpdateColumns(map[string]interface{}{
			"role":       in.Role,
			"updated_at": s.now(),
		}).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Role = in.Role

	logger.Log.Info("User role changed",
		logger.WithUserID(user.ID),
		zap.String("role", in.Role),
	)
	return &user, nil
}

// DeleteUser removes an account and everything it owns. Counters of posts
// the user had reacted to are recomputed from the remaining interactions.
func (s *Service) DeleteUser(ctx context.Context, actor *models.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.ID {
		return apierror.Forbidden("admins cannot delete their own account")
	}

	var ownPosts []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Take(&user, "id = ?", userID).Error; err != nil {
			return notFoundOr(err, "user")
		}

		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ownPosts).Error; err != nil {
			return fmt.Errorf("load user posts: %w", err)
		}
		if err := deletePostCascade(tx, ownPosts); err != nil {
			return err
		}

		var reacted []string
		if err := tx.Model(&models.Interaction{}).Where("user_id = ?", userID).Pluck("post_id", &reacted).Error; err != nil {
			return fmt.Errorf("load user reactions: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Interaction{}).Error; err != nil {
			return fmt.Errorf("delete user reactions: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete user comments: %w", err)
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", userID, userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete user notifications: %w", err)
		}
		if err := recountReactions(tx, reacted); err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range ownPosts {
		s.metrics.Record(metrics.EventPostDeleted, "user_deleted")
		s.events.Broadcast(ws.Event{Type: ws.EventPostDeleted, Data: map[string]string{"idPostingan": id}})
	}
	logger.Log.Info("User deleted",
		logger.WithUserID(userID),
		zap.Int("posts", len(ownPosts)),
	)
	return nil
}

// recountReactions sets both counters from the interactions table. Must run
// inside a transaction.
func recountReactions(tx *gorm.DB, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	const countByType = "(SELECT COUNT(*) FROM interactions WHERE interactions.post_id = posts.id AND interactions.type = ?)"
	err := tx.Model(&models.Post{}).
		Where("id IN ?", postIDs).
		UpdateColumns(map[string]interface{}{
			"like_count":    gorm.Expr(countByType, models.InteractionLike),
			"dislike_count": gorm.Expr(countByType, models.InteractionDislike),
		}).Error
	if err != nil {
		return fmt.Errorf("recount reactions: %w", err)
	}
	return nil
}

// SetRoleByEmail changes a role without an acting admin. It backs the
// operator CLI, which talks to the database directly.
func (s *Service) SetRoleByEmail(ctx context.Context, email, role string) (*models.User, error) {
	in := SetRoleInput{Role: strings.ToLower(strings.TrimSpace(role))}
	if err := s.check(in); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if user.Role == in.Role {
		return &user, nil
	}
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumns(map[string]interface{}{
		"role":       in.Role,
		"updated_at": s.now(),
	}).Error; err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = in.Role
	return &user, nil
}
