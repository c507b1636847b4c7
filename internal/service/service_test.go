package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/auth"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/storage"
	"github.com/sujalbistaa/suara/internal/testutil"
	"github.com/sujalbistaa/suara/internal/ws"
)

type sentEvent struct {
	UserID string
	Event  ws.Event
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Broadcast(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{Event: e})
}

func (r *recorder) SendToUser(userID string, e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{UserID: userID, Event: e})
}

func (r *recorder) ofType(eventType string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, e := range r.events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// tickingClock advances one second on every read so creation order is
// always distinguishable.
type tickingClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type fixture struct {
	svc    *Service
	db     *gorm.DB
	events *recorder
	clock  *tickingClock
}

func newFixture(t *testing.T, uploader storage.Uploader) *fixture {
	t.Helper()

	database := testutil.NewDB(t)
	rec := &recorder{}
	clock := &tickingClock{cur: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := New(database, auth.NewTokenManager([]byte("test_jwt_secret_key"), time.Hour), Options{
		Events:     rec,
		Uploader:   uploader,
		AdminEmail: "rektor@kampus.ac.id",
		Now:        clock.Now,
	})
	return &fixture{svc: svc, db: database, events: rec, clock: clock}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name, models.RoleUser)
}

func (f *fixture) admin(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name, models.RoleAdmin)
}

func (f *fixture) post(t *testing.T, owner *models.User, text string) *models.Post {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), owner, CreatePostInput{Deskripsi: text})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, postID string) models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, f.db.Take(&p, "id = ?", postID).Error)
	return p
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in, want Page
	}{
		{Page{}, Page{Limit: 20}},
		{Page{Limit: 5, Offset: 10}, Page{Limit: 5, Offset: 10}},
		{Page{Limit: 1000}, Page{Limit: 100}},
		{Page{Limit: -3, Offset: -1}, Page{Limit: 20}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.in.normalize())
	}
}
