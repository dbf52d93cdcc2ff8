package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"eino_chat_bridge/pkg"
)

// ErrSessionNotFound is returned when appending to a session that does not
// exist (never created, or evicted in the meantime)
var ErrSessionNotFound = errors.New("session not found")

// Session is a snapshot of one user's conversation state
type Session struct {
	UserID       string
	History      []pkg.ConversationMessage
	LastActivity time.Time
}

// SessionStore keeps per-user conversation history in memory. Histories and
// last-activity timestamps live in two maps guarded by one mutex, so a key
// exists in one map if and only if it exists in the other.
type SessionStore struct {
	mu           sync.Mutex
	histories    map[string][]pkg.ConversationMessage
	lastActivity map[string]time.Time
	busy         map[string]*keyLock
	now          func() time.Time
}

// keyLock serializes exchanges for one user. refs counts holders plus
// waiters; while refs > 0 the key is busy and eviction skips it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock creates an empty store that reads time from now
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{
		histories:    make(map[string][]pkg.ConversationMessage),
		lastActivity: make(map[string]time.Time),
		busy:         make(map[string]*keyLock),
		now:          now,
	}
}

// GetOrCreate returns the session for userID, creating it when absent. The
// prompt factory runs only on creation and its result becomes the single
// system turn of the new session.
func (s *SessionStore) GetOrCreate(userID string, promptFactory func() string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history, ok := s.histories[userID]; ok {
		return s.snapshot(userID, history), false
	}

	now := s.now()
	history := []pkg.ConversationMessage{pkg.SystemMessage(promptFactory())}
	s.histories[userID] = history
	s.lastActivity[userID] = now

	return s.snapshot(userID, history), true
}

// AppendUser appends a user turn to an existing session
func (s *SessionStore) AppendUser(userID, text string) error {
	return s.append(userID, pkg.UserMessage(text))
}

// AppendAssistant appends an assistant turn to an existing session
func (s *SessionStore) AppendAssistant(userID, text string) error {
	return s.append(userID, pkg.AssistantMessage(text))
}

func (s *SessionStore) append(userID string, msg pkg.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[userID]
	if !ok {
		return fmt.Errorf("append %s turn for %s: %w", msg.Role, userID, ErrSessionNotFound)
	}
	s.histories[userID] = append(history, msg)
	return nil
}

// Touch records inbound activity for userID. Missing sessions are ignored.
func (s *SessionStore) Touch(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lastActivity[userID]; ok {
		s.lastActivity[userID] = s.now()
	}
}

// History returns a copy of the user's turns, or nil when there is no session
func (s *SessionStore) History(userID string) []pkg.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[userID]
	if !ok {
		return nil
	}
	return copyHistory(history)
}

// Exists reports whether a session exists for userID
func (s *SessionStore) Exists(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.histories[userID]
	return ok
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.histories)
}

// EvictIdle removes every session whose last activity is older than
// now - threshold and returns the evicted user IDs. Sessions with an exchange
// in flight are skipped; they are reconsidered on the next sweep.
func (s *SessionStore) EvictIdle(now time.Time, threshold time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-threshold)
	var evicted []string
	for userID, last := range s.lastActivity {
		if !last.Before(cutoff) {
			continue
		}
		if _, busy := s.busy[userID]; busy {
			continue
		}
		delete(s.histories, userID)
		delete(s.lastActivity, userID)
		evicted = append(evicted, userID)
	}
	return evicted
}

// Acquire blocks until the caller holds the exchange lock for userID and
// returns the function that releases it. While held, the session cannot be
// evicted.
func (s *SessionStore) Acquire(userID string) func() {
	s.mu.Lock()
	kl, ok := s.busy[userID]
	if !ok {
		kl = &keyLock{}
		s.busy[userID] = kl
	}
	kl.refs++
	s.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()

			s.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(s.busy, userID)
			}
			s.mu.Unlock()
		})
	}
}

func (s *SessionStore) snapshot(userID string, history []pkg.ConversationMessage) Session {
	return Session{
		UserID:       userID,
		History:      copyHistory(history),
		LastActivity: s.lastActivity[userID],
	}
}

func copyHistory(history []pkg.ConversationMessage) []pkg.ConversationMessage {
	out := make([]pkg.ConversationMessage, len(history))
	copy(out, history)
	return out
}
