package conversation

import (
	"errors"
	"fmt"
	"sync"
)

// State is the phase of a phone call.
type State int

const (
	Started State = iota
	AwaitingSpeech
	Processing
	Responding
	Ended
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	case AwaitingSpeech:
		return "awaiting_speech"
	case Processing:
		return "processing"
	case Responding:
		return "responding"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidTransition is returned when a call is moved to a state its current state does not allow.
var ErrInvalidTransition = errors.New("invalid call state transition")

var transitions = map[State][]State{
	Started:        {AwaitingSpeech, Ended},
	AwaitingSpeech: {Processing, AwaitingSpeech, Ended},
	Processing:     {Responding, AwaitingSpeech, Ended},
	Responding:     {AwaitingSpeech, Ended},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type callState struct {
	state   State
	retries int
}

// tracker holds the state and silent-retry count of every live call.
type tracker struct {
	mu    sync.Mutex
	calls map[string]*callState
}

func newTracker() *tracker {
	return &tracker{calls: make(map[string]*callState)}
}

// start registers callID in Started, replacing any earlier record.
func (t *tracker) start(callID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[callID] = &callState{state: Started}
}

func (t *tracker) transition(callID string, to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.calls[callID]
	if !ok {
		return fmt.Errorf("%w: unknown call %s", ErrInvalidTransition, callID)
	}
	if !CanTransition(c.state, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.state, to)
	}
	c.state = to
	if to == Processing {
		c.retries = 0
	}
	return nil
}

// retry counts one silent or unusable callback for a tracked call and returns
// the new count. Unknown calls are not registered.
func (t *tracker) retry(callID string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.calls[callID]
	if !ok {
		return 0, false
	}
	if c.state == Started {
		c.state = AwaitingSpeech
	}
	c.retries++
	return c.retries, true
}

func (t *tracker) state(callID string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.calls[callID]
	if !ok {
		return Ended, false
	}
	return c.state, true
}

// end forgets callID and reports whether it was being tracked.
func (t *tracker) end(callID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.calls[callID]
	delete(t.calls, callID)
	return ok
}

func (t *tracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
