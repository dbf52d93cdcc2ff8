package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eino_chat_bridge/src/logger"
)

const (
	// DefaultSweepInterval is how often idle sessions are looked for
	DefaultSweepInterval = 60 * time.Second
	// DefaultIdleThreshold is how long a session may stay idle before eviction
	DefaultIdleThreshold = 600 * time.Second
)

// Sweeper evicts idle sessions from a SessionStore on a fixed schedule
type Sweeper struct {
	store     *SessionStore
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper creates a sweeper. interval must be positive and strictly shorter
// than threshold so that idleness is caught within one interval.
func NewSweeper(store *SessionStore, interval, threshold time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if interval >= threshold {
		return nil, fmt.Errorf("sweep interval %s must be shorter than idle threshold %s", interval, threshold)
	}

	return &Sweeper{
		store:     store,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
	}, nil
}

// Start schedules the sweep. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.Sweep(s.now())
	}); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	c.Start()

	s.cron = c
	s.running = true

	logger.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("Session sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to
// expire
func (s *Sweeper) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.running = false
	s.cron = nil
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	logger.Info().Msg("Session sweeper stopped")
}

// Sweep evicts sessions idle at now and returns the evicted user IDs
func (s *Sweeper) Sweep(now time.Time) []string {
	evicted := s.store.EvictIdle(now, s.threshold)
	for _, userID := range evicted {
		logger.Info().Str("user_id", userID).Msg("Evicted idle session")
	}
	if len(evicted) > 0 {
		logger.Debug().
			Int("evicted", len(evicted)).
			Int("remaining", s.store.Len()).
			Msg("Session sweep finished")
	}
	return evicted
}
