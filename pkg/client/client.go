// Package client is a Go SDK for the suara REST API.
package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

const userAgent = "suara-go/0.1.0"

// Client talks to one server. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger logs every request and response at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			l.Debug("HTTP request", "method", req.Method, "url", req.URL)
			return nil
		})
		c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			l.Debug("HTTP response", "status", resp.StatusCode(), "elapsed", resp.Time())
			return nil
		})
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    resty.New(),
		baseURL: baseURL,
	}
	c.http.SetBaseURL(baseURL)
	c.http.SetTimeout(30 * time.Second)
	c.http.SetHeader("User-Agent", userAgent)
	c.http.SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends one request and decodes the data field of the response into out.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return parseError(resp)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func pageQuery(opts ListOptions) map[string]string {
	q := map[string]string{}
	if opts.Limit > 0 {
		q["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		q["offset"] = strconv.Itoa(opts.Offset)
	}
	if opts.UserID != "" {
		q["userId"] = opts.UserID
	}
	return q
}

// --- Auth ---

// Register creates an account and keeps its token for later calls.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Posts ---

func (c *Client) ListPosts(ctx context.Context, opts ListOptions) (*PostPage, error) {
	var page PostPage
	if err := c.do(ctx, http.MethodGet, "/api/posts", pageQuery(opts), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, in PostUpdate) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+id, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, nil, nil)
}

// --- Reactions ---

// React sends "like" or "dislike". Repeating the current reaction fails
// with CONFLICT.
func (c *Client) React(ctx context.Context, postID, kind string) (*Reaction, error) {
	var r Reaction
	body := map[string]string{"interactionType": kind}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/like", nil, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RemoveReaction(ctx context.Context, postID string) (*Reaction, error) {
	var r Reaction
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+postID+"/like", nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- Comments ---

func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var list []Comment
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+postID+"/comments", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (*Comment, error) {
	var cm Comment
	body := map[string]string{"comment": text}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/comments", nil, body, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+id, nil, nil, nil)
}

// --- Profile and notifications ---

func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/"+userID, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Notifications(ctx context.Context, opts ListOptions) (*NotificationPage, error) {
	var page NotificationPage
	if err := c.do(ctx, http.MethodGet, "/api/notifications", pageQuery(opts), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/"+id+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil, nil)
}

// UploadImage sends raw image bytes; the server detects the type.
func (c *Client) UploadImage(ctx context.Context, data []byte, fileName string) (*UploadResult, error) {
	var res UploadResult
	body := map[string]string{
		"image":    base64.StdEncoding.EncodeToString(data),
		"fileName": fileName,
	}
	if err := c.do(ctx, http.MethodPost, "/api/uploads", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Admin ---

func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) SetUserRole(ctx context.Context, userID, role string) (*User, error) {
	var u User
	body := map[string]string{"role": role}
	if err := c.do(ctx, http.MethodPut, "/api/admin/users/"+userID+"/role", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+userID, nil, nil, nil)
}
