package ws

import "encoding/json"

// Event types pushed to clients.
const (
	EventPostCreated     = "post_created"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventReactionUpdated = "reaction_updated"
	EventCommentCreated  = "comment_created"
	EventCommentDeleted  = "comment_deleted"
	EventNotification    = "notification"
)

// Event is the JSON envelope every client receives.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher is what the domain layer needs from the hub. Delivery is
// at-most-once: events for slow or disconnected clients are dropped.
type Publisher interface {
	Broadcast(event Event)
	SendToUser(userID string, event Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Broadcast(Event)          {}
func (NopPublisher) SendToUser(string, Event) {}
