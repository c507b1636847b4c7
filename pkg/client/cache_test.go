package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = &APIError{StatusCode: 500, Code: "INTERNAL_ERROR", Message: "boom"}

// fakeAPI answers from a fixed feed. Set fail to make every mutation fail;
// gate, when set, blocks mutations until closed.
type fakeAPI struct {
	mu    sync.Mutex
	feed  []Post
	fail  bool
	gate  chan struct{}
	calls int
}

func (f *fakeAPI) wait() error {
	f.mu.Lock()
	f.calls++
	gate, fail := f.gate, f.fail
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fail {
		return errRefused
	}
	return nil
}

func (f *fakeAPI) ListPosts(context.Context, ListOptions) (*PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &PostPage{Posts: append([]Post(nil), f.feed...)}, nil
}

func (f *fakeAPI) CreatePost(_ context.Context, in PostInput) (*Post, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &Post{ID: "p-new", Deskripsi: in.Deskripsi, Username: "sari"}, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, id string, in PostUpdate) (*Post, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &Post{ID: id, Deskripsi: *in.Deskripsi, LikeCount: 1}, nil
}

func (f *fakeAPI) DeletePost(context.Context, string) error {
	return f.wait()
}

func (f *fakeAPI) React(_ context.Context, id, kind string) (*Reaction, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &Reaction{PostID: id, LikeCount: 7, MyReaction: kind}, nil
}

func (f *fakeAPI) RemoveReaction(_ context.Context, id string) (*Reaction, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &Reaction{PostID: id}, nil
}

func newCache(t *testing.T, api *fakeAPI) *Cache {
	t.Helper()
	api.feed = []Post{
		{ID: "p1", Deskripsi: "satu", LikeCount: 1, MyReaction: "like"},
		{ID: "p2", Deskripsi: "dua"},
		{ID: "p3", Deskripsi: "tiga", DislikeCount: 2},
	}
	c := NewCache(api, User{ID: "u1", Username: "sari"}, ListOptions{})
	require.NoError(t, c.Invalidate(context.Background()))
	return c
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestCreateShowsPlaceholderThenServerPost(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	c := newCache(t, api)

	done := make(chan *Post)
	go func() {
		p, err := c.CreatePost(context.Background(), PostInput{Deskripsi: "baru"})
		assert.NoError(t, err)
		done <- p
	}()

	require.Eventually(t, func() bool {
		posts := c.Posts()
		return len(posts) == 4 && strings.HasPrefix(posts[0].ID, TempPrefix)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "sari", c.Posts()[0].Username)

	close(api.gate)
	created := <-done
	assert.Equal(t, "p-new", created.ID)
	assert.Equal(t, []string{"p-new", "p1", "p2", "p3"}, ids(c.Posts()))
}

func TestCreateFailureRemovesPlaceholder(t *testing.T) {
	api := &fakeAPI{fail: true}
	c := newCache(t, api)

	_, err := c.CreatePost(context.Background(), PostInput{Deskripsi: "gagal"})
	require.ErrorIs(t, err, errRefused)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(c.Posts()))
}

func TestReactRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{fail: true}
	c := newCache(t, api)
	before, _ := c.Get("p1")

	_, err := c.React(context.Background(), "p1", "dislike")
	require.Error(t, err)

	after, _ := c.Get("p1")
	assert.Equal(t, before, after)
}

func TestReactAppliesOptimisticallyThenTakesServerCounters(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	c := newCache(t, api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.React(context.Background(), "p1", "dislike")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		p, _ := c.Get("p1")
		return p.MyReaction == "dislike"
	}, time.Second, 5*time.Millisecond)
	p, _ := c.Get("p1")
	assert.Equal(t, 0, p.LikeCount)
	assert.Equal(t, 1, p.DislikeCount)

	close(api.gate)
	<-done
	p, _ = c.Get("p1")
	assert.Equal(t, 7, p.LikeCount, "server counters win")
	assert.Equal(t, "dislike", p.MyReaction)
}

func TestRemoveReactionRollsBack(t *testing.T) {
	api := &fakeAPI{fail: true}
	c := newCache(t, api)

	_, err := c.RemoveReaction(context.Background(), "p1")
	require.Error(t, err)
	p, _ := c.Get("p1")
	assert.Equal(t, "like", p.MyReaction)
	assert.Equal(t, 1, p.LikeCount)
}

func TestUpdateRollsBack(t *testing.T) {
	api := &fakeAPI{fail: true}
	c := newCache(t, api)

	text := "diubah"
	_, err := c.UpdatePost(context.Background(), "p2", PostUpdate{Deskripsi: &text})
	require.Error(t, err)
	p, _ := c.Get("p2")
	assert.Equal(t, "dua", p.Deskripsi)

	api.fail = false
	_, err = c.UpdatePost(context.Background(), "p1", PostUpdate{Deskripsi: &text})
	require.NoError(t, err)
	p, _ = c.Get("p1")
	assert.Equal(t, "diubah", p.Deskripsi)
	assert.Equal(t, "like", p.MyReaction, "own reaction survives the server copy")
}

func TestDeleteRestoresPosition(t *testing.T) {
	api := &fakeAPI{fail: true}
	c := newCache(t, api)

	err := c.DeletePost(context.Background(), "p2")
	require.True(t, errors.Is(err, errRefused))
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(c.Posts()))

	api.fail = false
	require.NoError(t, c.DeletePost(context.Background(), "p2"))
	assert.Equal(t, []string{"p1", "p3"}, ids(c.Posts()))
}

func TestApplyReactionTransitions(t *testing.T) {
	p := Post{}
	applyReaction(&p, "like")
	assert.Equal(t, Post{LikeCount: 1, MyReaction: "like"}, p)

	applyReaction(&p, "like")
	assert.Equal(t, 1, p.LikeCount, "repeat is a no-op")

	applyReaction(&p, "dislike")
	assert.Equal(t, Post{DislikeCount: 1, MyReaction: "dislike"}, p)

	p.DislikeCount = 0
	applyReaction(&p, "")
	assert.Equal(t, 0, p.DislikeCount, "never negative")
	assert.Empty(t, p.MyReaction)
}

func TestApplyCounters(t *testing.T) {
	c := newCache(t, &fakeAPI{})
	c.ApplyCounters("p3", 5, 6)
	p, _ := c.Get("p3")
	assert.Equal(t, 5, p.LikeCount)
	assert.Equal(t, 6, p.DislikeCount)
}
