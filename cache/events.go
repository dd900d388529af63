package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types published on EventStreamChannel.
const (
	EventCallStarted   = "telephony.call.started"
	EventCallEnded     = "telephony.call.ended"
	EventTurnCompleted = "telephony.turn.completed"
)

// Event is the payload published for call lifecycle changes.
type Event struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel"` // phone or web
	SessionID string    `json:"session_id"`
	Language  string    `json:"language,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits events; a nil *Client publishes nothing.
type Publisher interface {
	Emit(ctx context.Context, e Event) error
}

// Emit serializes and publishes an event.
func (c *Client) Emit(ctx context.Context, e Event) error {
	if c == nil {
		return nil
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}
	return c.PublishEvent(ctx, EventStreamChannel, string(data))
}
