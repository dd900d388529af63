// Package session holds per-conversation transcripts for the phone channel.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Roles used in a transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNotFound is returned when no session exists for an ID.
	ErrNotFound = errors.New("session not found")
	// ErrRoleOrder is returned when an append would place two turns of the same role together.
	ErrRoleOrder = errors.New("turn role repeats previous turn")
	// ErrExists is returned by Create when the ID is already in use.
	ErrExists = errors.New("session already exists")
)

// Turn is one message in a transcript.
type Turn struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
	Original string `json:"original,omitempty"`
}

// Session is an ordered transcript keyed by call ID.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// History returns the transcript without its system turns.
func (s *Session) History() []Turn {
	out := make([]Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Role == RoleSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Session) clone() *Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	return &c
}

// Store persists sessions. Implementations must make each call atomic.
type Store interface {
	Create(ctx context.Context, id string, first ...Turn) (*Session, error)
	Append(ctx context.Context, id string, turns ...Turn) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// checkOrder verifies that appending next to existing keeps roles alternating.
func checkOrder(existing []Turn, next []Turn) error {
	prev := ""
	if len(existing) > 0 {
		prev = existing[len(existing)-1].Role
	}
	for _, t := range next {
		switch t.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("unknown role %q", t.Role)
		}
		if t.Role == prev {
			return fmt.Errorf("%w: %s after %s", ErrRoleOrder, t.Role, prev)
		}
		prev = t.Role
	}
	return nil
}
