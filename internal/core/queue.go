package core

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/src/logger"
)

// ErrQueueClosed is returned by Submit after Close
var ErrQueueClosed = errors.New("queue closed")

// HandleFunc processes one message
type HandleFunc func(ctx context.Context, msg transport.Message) *Result

// ConversationQueue hands messages to handle one at a time per sender, in
// arrival order. Different senders are processed in parallel.
type ConversationQueue struct {
	handle HandleFunc

	mu      sync.Mutex
	pending map[string]*list.List
	closed  bool
	wg      sync.WaitGroup
}

// NewConversationQueue creates a queue that dispatches to handle
func NewConversationQueue(handle HandleFunc) *ConversationQueue {
	return &ConversationQueue{
		handle:  handle,
		pending: make(map[string]*list.List),
	}
}

// Submit enqueues msg behind earlier messages from the same sender. A worker
// is started for the sender when none is running.
func (q *ConversationQueue) Submit(ctx context.Context, msg transport.Message) error {
	if msg == nil {
		return errors.New("cannot enqueue nil message")
	}
	key := msg.From()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if pending, ok := q.pending[key]; ok {
		pending.PushBack(msg)
		return nil
	}

	pending := list.New()
	pending.PushBack(msg)
	q.pending[key] = pending

	q.wg.Add(1)
	go q.drain(ctx, key)
	return nil
}

func (q *ConversationQueue) drain(ctx context.Context, key string) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		pending := q.pending[key]
		front := pending.Front()
		if front == nil {
			delete(q.pending, key)
			q.mu.Unlock()
			return
		}
		pending.Remove(front)
		q.mu.Unlock()

		q.handleOne(ctx, front.Value.(transport.Message))
	}
}

func (q *ConversationQueue) handleOne(ctx context.Context, msg transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("user_id", msg.From()).Msg("Queue worker recovered from panic")
		}
	}()
	q.handle(ctx, msg)
}

// Size returns the number of messages waiting for key, excluding the one in
// progress
func (q *ConversationQueue) Size(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if pending, ok := q.pending[key]; ok {
		return pending.Len()
	}
	return 0
}

// Close stops accepting messages and waits for queued ones to finish
func (q *ConversationQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
}
