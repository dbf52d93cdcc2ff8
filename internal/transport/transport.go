// Package transport defines the inbound message contract shared by the chat
// adapters
package transport

import "context"

// Message is one user-authored inbound message
type Message interface {
	// ID identifies the message within its transport
	ID() string
	// From is the stable sender identifier used as the session key
	From() string
	Body() string
	// Chat fetches the conversation the message arrived in
	Chat(ctx context.Context) (Chat, error)
	// SenderName fetches the sender's display name
	SenderName(ctx context.Context) (string, error)
	// Reply sends text back into the same conversation
	Reply(ctx context.Context, text string) error
}

// Chat is the conversation a message arrived in
type Chat interface {
	// IsGroup reports a multi-party conversation
	IsGroup() bool
	SendTyping(ctx context.Context) error
	ClearTyping(ctx context.Context) error
}

// Handler consumes inbound messages
type Handler func(ctx context.Context, msg Message)

// Transport delivers inbound messages to a handler until ctx is done
type Transport interface {
	Name() string
	Run(ctx context.Context, handle Handler) error
}
