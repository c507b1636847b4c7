package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
)

// Stream event types.
const (
	EventPostCreated     = "post_created"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventReactionUpdated = "reaction_updated"
	EventCommentCreated  = "comment_created"
	EventCommentDeleted  = "comment_deleted"
	EventNotification    = "notification"
)

// Event is one message from the live stream. Data is decoded on demand.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Data, out)
}

func streamURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String(), nil
}

// Subscribe opens the live stream. Events for the logged-in user arrive
// only when a token is set. The channel closes when ctx ends or the
// connection drops; missed events are not replayed.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	target, err := streamURL(c.baseURL, c.Token())
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: "STREAM_REFUSED", Message: err.Error()}
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	events := make(chan Event, 32)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
