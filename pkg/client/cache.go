package client

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TempPrefix marks posts that exist only locally while their create call is
// in flight.
const TempPrefix = "TEMP_"

// PostAPI is the part of Client the cache drives.
type PostAPI interface {
	ListPosts(ctx context.Context, opts ListOptions) (*PostPage, error)
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id string, in PostUpdate) (*Post, error)
	DeletePost(ctx context.Context, id string) error
	React(ctx context.Context, postID, kind string) (*Reaction, error)
	RemoveReaction(ctx context.Context, postID string) (*Reaction, error)
}

var _ PostAPI = (*Client)(nil)

// Cache holds the post feed and applies mutations optimistically: the local
// list changes first and is rolled back when the server refuses.
//
// Mutations run one at a time. Readers never wait on the network and see
// the optimistic state while a call is in flight.
type Cache struct {
	api  PostAPI
	self User

	mutate sync.Mutex

	mu    sync.RWMutex
	posts []Post
	opts  ListOptions
}

// NewCache builds an empty cache. self fills the author of placeholders.
func NewCache(api PostAPI, self User, opts ListOptions) *Cache {
	return &Cache{api: api, self: self, opts: opts}
}

// Posts returns a copy of the feed, newest first.
func (c *Cache) Posts() []Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// Get returns a copy of one cached post.
func (c *Cache) Get(id string) (Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.posts[i], true
	}
	return Post{}, false
}

// Invalidate refetches the feed from the server.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	page, err := c.api.ListPosts(ctx, c.opts)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.posts = append([]Post(nil), page.Posts...)
	c.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (c *Cache) indexOf(id string) int {
	for i := range c.posts {
		if c.posts[i].ID == id {
			return i
		}
	}
	return -1
}

// CreatePost shows a TEMP_ placeholder at the head of the feed until the
// server answers. The placeholder is swapped for the stored post or removed.
func (c *Cache) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	tempID := TempPrefix + uuid.NewString()
	placeholder := Post{
		ID:        tempID,
		UserID:    c.self.ID,
		Username:  c.self.Username,
		Judul:     strings.TrimSpace(in.Judul),
		Deskripsi: strings.TrimSpace(in.Deskripsi),
		ImageURL:  in.ImageURL,
	}
	c.mu.Lock()
	c.posts = append([]Post{placeholder}, c.posts...)
	c.mu.Unlock()

	created, err := c.api.CreatePost(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(tempID)
	if err != nil {
		if i >= 0 {
			c.posts = append(c.posts[:i], c.posts[i+1:]...)
		}
		return nil, err
	}
	if i >= 0 {
		c.posts[i] = *created
	} else {
		c.posts = append([]Post{*created}, c.posts...)
	}
	return created, nil
}

// UpdatePost applies the edit locally and restores the previous version if
// the server rejects it.
func (c *Cache) UpdatePost(ctx context.Context, id string, in PostUpdate) (*Post, error) {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	snapshot, ok := c.apply(id, func(p *Post) {
		if in.Judul != nil {
			p.Judul = strings.TrimSpace(*in.Judul)
		}
		if in.Deskripsi != nil {
			p.Deskripsi = strings.TrimSpace(*in.Deskripsi)
		}
		if in.ImageURL != nil {
			p.ImageURL = *in.ImageURL
		}
	})

	updated, err := c.api.UpdatePost(ctx, id, in)
	if err != nil {
		if ok {
			c.restore(snapshot)
		}
		return nil, err
	}
	c.apply(id, func(p *Post) {
		mine := p.MyReaction
		*p = *updated
		if p.MyReaction == "" {
			p.MyReaction = mine
		}
	})
	return updated, nil
}

// DeletePost removes the post locally and puts it back at the same position
// if the server refuses.
func (c *Cache) DeletePost(ctx context.Context, id string) error {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	c.mu.Lock()
	i := c.indexOf(id)
	var removed Post
	if i >= 0 {
		removed = c.posts[i]
		c.posts = append(c.posts[:i], c.posts[i+1:]...)
	}
	c.mu.Unlock()

	if err := c.api.DeletePost(ctx, id); err != nil {
		if i >= 0 {
			c.mu.Lock()
			if i > len(c.posts) {
				i = len(c.posts)
			}
			c.posts = append(c.posts[:i], append([]Post{removed}, c.posts[i:]...)...)
			c.mu.Unlock()
		}
		return err
	}
	return nil
}

// React applies a like or dislike locally, then takes the server's counters.
func (c *Cache) React(ctx context.Context, id, kind string) (*Reaction, error) {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	snapshot, ok := c.apply(id, func(p *Post) { applyReaction(p, kind) })

	res, err := c.api.React(ctx, id, kind)
	if err != nil {
		if ok {
			c.restore(snapshot)
		}
		return nil, err
	}
	c.apply(id, func(p *Post) { takeCounters(p, res) })
	return res, nil
}

// RemoveReaction clears the caller's reaction locally, then takes the
// server's counters.
func (c *Cache) RemoveReaction(ctx context.Context, id string) (*Reaction, error) {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	snapshot, ok := c.apply(id, func(p *Post) { applyReaction(p, "") })

	res, err := c.api.RemoveReaction(ctx, id)
	if err != nil {
		if ok {
			c.restore(snapshot)
		}
		return nil, err
	}
	c.apply(id, func(p *Post) { takeCounters(p, res) })
	return res, nil
}

// ApplyCounters folds a reaction_updated stream event into the feed. The
// caller's own reaction is left as is.
func (c *Cache) ApplyCounters(postID string, likes, dislikes int) {
	c.apply(postID, func(p *Post) {
		p.LikeCount = likes
		p.DislikeCount = dislikes
	})
}

// apply mutates the cached post and returns its previous value.
func (c *Cache) apply(id string, fn func(*Post)) (Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return Post{}, false
	}
	before := c.posts[i]
	fn(&c.posts[i])
	return before, true
}

func (c *Cache) restore(p Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(p.ID); i >= 0 {
		c.posts[i] = p
	}
}

// applyReaction moves the counters the way the server will. kind "" means
// removal. Repeating the current reaction changes nothing.
func applyReaction(p *Post, kind string) {
	if p.MyReaction == kind {
		return
	}
	switch p.MyReaction {
	case "like":
		p.LikeCount = max(p.LikeCount-1, 0)
	case "dislike":
		p.DislikeCount = max(p.DislikeCount-1, 0)
	}
	switch kind {
	case "like":
		p.LikeCount++
	case "dislike":
		p.DislikeCount++
	}
	p.MyReaction = kind
}

func takeCounters(p *Post, r *Reaction) {
	p.LikeCount = r.LikeCount
	p.DislikeCount = r.DislikeCount
	p.MyReaction = r.MyReaction
}
