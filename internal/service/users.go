package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/auth"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	NIM      string `json:"nim" validate:"max=32"`
	Gender   string `json:"gender" validate:"max=16"`
	Jurusan  string `json:"jurusan" validate:"max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by Register and Login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// UpdateProfileInput changes only the fields that are set.
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	NIM      *string `json:"nim" validate:"omitempty,max=32"`
	Gender   *string `json:"gender" validate:"omitempty,max=16"`
	Jurusan  *string `json:"jurusan" validate:"omitempty,max=100"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Profile is a user's public view.
type Profile struct {
	User      *models.User `json:"user"`
	PostCount int64        `json:"postCount"`
}

// createUser inserts user. A concurrent registration that slipped past the
// email check is still reported as a conflict.
func createUser(tx *gorm.DB, user *models.User) error {
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierror.Conflict("email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Register creates an account. Emails are unique regardless of case.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.NIM = strings.TrimSpace(in.NIM)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Jurusan = strings.TrimSpace(in.Jurusan)
	if err := s.check(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if s.adminEmail != "" && in.Email == s.adminEmail {
		role = models.RoleAdmin
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		NIM:          in.NIM,
		Gender:       in.Gender,
		Jurusan:      in.Jurusan,
		Role:         role,
		CreatedAt:    s.now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return apierror.Conflict("email already registered")
		}
		return createUser(tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Record(metrics.EventUserRegistered, "")
	return s.newSession(user)
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.Record(metrics.EventLoginFailed, "")
		return nil, apierror.InvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		s.metrics.Record(metrics.EventLoginFailed, "")
		return nil, apierror.InvalidCredentials()
	}
	return s.newSession(&user)
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to the current user record, so role
// changes take effect on the next request.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierror.Unauthorized("missing token")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apierror.Unauthorized("token expired")
		}
		return nil, apierror.Unauthorized("invalid token")
	}

	var user models.User
	err = s.db.WithContext(ctx).Take(&user, "id = ?", claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// GetProfile returns any user's public profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	return &Profile{User: &user, PostCount: count}, nil
}

// UpdateProfile edits the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor *models.User, in UpdateProfileInput) (*models.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.Username = trimPtr(in.Username)
	in.NIM = trimPtr(in.NIM)
	in.Gender = trimPtr(in.Gender)
	in.Jurusan = trimPtr(in.Jurusan)
	if in.Username != nil && *in.Username == "" {
		return nil, apierror.ValidationError("username", "username is required")
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Username != nil {
		updates["username"] = *in.Username
	}
	if in.NIM != nil {
		updates["nim"] = *in.NIM
	}
	if in.Gender != nil {
		updates["gender"] = *in.Gender
	}
	if in.Jurusan != nil {
		updates["jurusan"] = *in.Jurusan
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&user, "id = ?", actor.ID).Error; err != nil {
			return notFoundOr(err, "user")
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = s.now()
		if err := tx.Model(&models.User{}).Where("id = ?", actor.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return tx.Take(&user, "id = ?", actor.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, actor *models.User, in ChangePasswordInput) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := s.check(in); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Take(&user, "id = ?", actor.ID).Error; err != nil {
			return notFoundOr(err, "user")
		}
		if !auth.CheckPassword(user.PasswordHash, in.OldPassword) {
			return apierror.ValidationError("oldPassword", "old password is incorrect")
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    s.now(),
		}).Error
	})
}
