package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Interaction types.
const (
	InteractionLike    = "like"
	InteractionDislike = "dislike"
)

// Notification types.
const (
	NotificationLike       = "like"
	NotificationDislike    = "dislike"
	NotificationComment    = "comment"
	NotificationModeration = "moderation"
)

// User is a registered student or admin.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"idUsers"`
	Email        string    `gorm:"not null;uniqueIndex;size:255" json:"email"` // Always stored lower-cased
	Username     string    `gorm:"not null;size:50" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	NIM          string    `gorm:"size:32" json:"nim"`
	Gender       string    `gorm:"size:16" json:"gender"`
	Jurusan      string    `gorm:"size:100" json:"jurusan"`
	Role         string    `gorm:"not null;default:user;size:16;index" json:"role"`
	CreatedAt    time.Time `json:"timestamp"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Post is a text or image posting. CreatedAt never changes after insert.
type Post struct {
	ID           string    `gorm:"primaryKey;size:36" json:"idPostingan"`
	UserID       string    `gorm:"not null;index;size:36" json:"idUsers"`
	Judul        string    `gorm:"size:200" json:"judul"`
	Deskripsi    string    `gorm:"not null" json:"deskripsi"`
	ImageURL     string    `json:"imageUrl"`
	LikeCount    int       `gorm:"not null;default:0" json:"likeCount"`
	DislikeCount int       `gorm:"not null;default:0" json:"dislikeCount"`
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Filled by joins, never stored.
	Username   string `gorm:"->;-:migration" json:"username"`
	MyReaction string `gorm:"-" json:"myReaction,omitempty"`
}

// Interaction is a user's like or dislike of a post. There is at most one
// row per (PostID, UserID).
type Interaction struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"not null;size:36;uniqueIndex:idx_interaction_post_user" json:"idPostingan"`
	UserID    string    `gorm:"not null;size:36;uniqueIndex:idx_interaction_post_user;index" json:"idUsers"`
	Type      string    `gorm:"not null;size:8" json:"interactionType"`
	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a text reply on a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"idComment"`
	PostID    string    `gorm:"not null;index;size:36" json:"idPostingan"`
	UserID    string    `gorm:"not null;index;size:36" json:"idUsers"`
	Content   string    `gorm:"not null" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"timestamp"`

	Username string `gorm:"->;-:migration" json:"username"`
}

// Notification is addressed to one recipient.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"idNotification"`
	UserID    string    `gorm:"not null;index;size:36" json:"idUsers"`
	ActorID   string    `gorm:"size:36" json:"actorId,omitempty"`
	PostID    string    `gorm:"size:36;index" json:"idPostingan,omitempty"`
	Type      string    `gorm:"not null;size:16" json:"type"`
	Message   string    `gorm:"not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Interaction{}, &Comment{}, &Notification{}}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error         { newID(&u.ID); return nil }
func (p *Post) BeforeCreate(*gorm.DB) error         { newID(&p.ID); return nil }
func (i *Interaction) BeforeCreate(*gorm.DB) error  { newID(&i.ID); return nil }
func (c *Comment) BeforeCreate(*gorm.DB) error      { newID(&c.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error { newID(&n.ID); return nil }
