package core

import (
	"context"
	"errors"

	"eino_chat_bridge/internal/nodes"
	"eino_chat_bridge/internal/provider"
	"eino_chat_bridge/pkg"
)

// State is a step of one message exchange
type State string

const (
	StateReceived        State = "received"
	StateFiltering       State = "filtering"
	StateDropped         State = "dropped"
	StateTypingIndicated State = "typing_indicated"
	StateSessionResolved State = "session_resolved"
	StateBackendInvoked  State = "backend_invoked"
	StateRepliedSuccess  State = "replied_success"
	StateRepliedError    State = "replied_error"
	StateDone            State = "done"
)

// Fixed replies
const (
	ApologyReply = "Sorry, there was an error generating a response."
)

var (
	// ErrPanic marks an exchange that was aborted by a recovered panic
	ErrPanic = errors.New("message handling panicked")
	// ErrSend marks a reply the transport failed to deliver
	ErrSend = errors.New("reply not delivered")
)

// Gateway is the provider contract the dispatcher depends on
type Gateway interface {
	Profile() provider.Profile
	Configured() bool
	Complete(ctx context.Context, history []pkg.ConversationMessage) (string, error)
}

// Renderer prepares raw generated text for the transport
type Renderer interface {
	Render(ctx context.Context, raw string) (nodes.Rendered, error)
}

// Result describes how one inbound message was handled
type Result struct {
	ExchangeID string
	UserID     string
	Path       []State
	// Reply is the text delivered to the user, empty when nothing was sent
	Reply   string
	Replied bool
	// TypingErr is a failed typing signal; it never aborts the exchange
	TypingErr error
	Err       error
}

func (r *Result) enter(s State) {
	r.Path = append(r.Path, s)
}

// Final returns the last state reached before Done
func (r *Result) Final() State {
	for i := len(r.Path) - 1; i >= 0; i-- {
		if r.Path[i] != StateDone {
			return r.Path[i]
		}
	}
	return ""
}

// Visited reports whether the exchange passed through s
func (r *Result) Visited(s State) bool {
	for _, p := range r.Path {
		if p == s {
			return true
		}
	}
	return false
}
