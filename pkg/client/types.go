package client

import "time"

// Post mirrors the server's post representation.
type Post struct {
	ID           string    `json:"idPostingan"`
	UserID       string    `json:"idUsers"`
	Username     string    `json:"username"`
	Judul        string    `json:"judul"`
	Deskripsi    string    `json:"deskripsi"`
	ImageURL     string    `json:"imageUrl"`
	LikeCount    int       `json:"likeCount"`
	DislikeCount int       `json:"dislikeCount"`
	MyReaction   string    `json:"myReaction,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type User struct {
	ID        string    `json:"idUsers"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	NIM       string    `json:"nim"`
	Gender    string    `json:"gender"`
	Jurusan   string    `json:"jurusan"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"timestamp"`
}

type Comment struct {
	ID        string    `json:"idComment"`
	PostID    string    `json:"idPostingan"`
	UserID    string    `json:"idUsers"`
	Username  string    `json:"username"`
	Content   string    `json:"comment"`
	CreatedAt time.Time `json:"timestamp"`
}

type Notification struct {
	ID        string    `json:"idNotification"`
	UserID    string    `json:"idUsers"`
	ActorID   string    `json:"actorId"`
	PostID    string    `json:"idPostingan"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"timestamp"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type PostPage struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
	Page  Page   `json:"page"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Unread        int64          `json:"unreadCount"`
	Total         int64          `json:"total"`
	Page          Page           `json:"page"`
}

// Reaction is a post's counters after a like or dislike change.
type Reaction struct {
	PostID       string `json:"idPostingan"`
	LikeCount    int    `json:"likeCount"`
	DislikeCount int    `json:"dislikeCount"`
	MyReaction   string `json:"myReaction"`
}

type Profile struct {
	User      User  `json:"user"`
	PostCount int64 `json:"postCount"`
}

type Stats struct {
	Users         int64 `json:"totalUsers"`
	Admins        int64 `json:"totalAdmins"`
	Posts         int64 `json:"totalPosts"`
	Comments      int64 `json:"totalComments"`
	Likes         int64 `json:"totalLikes"`
	Dislikes      int64 `json:"totalDislikes"`
	PostsLastWeek int64 `json:"postsLastWeek"`
}

type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	NIM      string `json:"nim,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Jurusan  string `json:"jurusan,omitempty"`
}

type PostInput struct {
	Judul     string `json:"judul,omitempty"`
	Deskripsi string `json:"deskripsi"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// PostUpdate changes only the non-nil fields.
type PostUpdate struct {
	Judul     *string `json:"judul,omitempty"`
	Deskripsi *string `json:"deskripsi,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
}

type ListOptions struct {
	Limit  int
	Offset int
	UserID string
}
