// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package ordersync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/decorum/internal/cache"
	"github.com/tomtom215/decorum/internal/clock"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
)

// DefaultDebounce is the minimum spacing between deliveries.
const DefaultDebounce = 2 * time.Second

// Flush results used for metrics and returned by Flush.
const (
	ResultSent      = "sent"
	ResultUnchanged = "unchanged"
	ResultInFlight  = "in_flight"
	ResultDeferred  = "deferred"
	ResultFailed    = "failed"
	ResultEmpty     = "empty"
)

// Syncer coalesces decoration-list changes for one session.
type Syncer struct {
	sessionID string
	sender    Sender
	sched     clock.Scheduler
	debounce  time.Duration
	limiter   *rate.Limiter
	logger    zerolog.Logger

	mu          sync.Mutex
	pending     []Item
	pendingHash string
	hasPending  bool
	lastHash    string
	inFlight    bool
	dirty       bool
	timer       clock.Timer
	closed      bool
}

// NewSyncer creates a Syncer. A nil sched uses the wall clock.
func NewSyncer(sessionID string, sender Sender, debounce time.Duration, sched clock.Scheduler) *Syncer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if sched == nil {
		sched = clock.Real{}
	}
	return &Syncer{
		sessionID: sessionID,
		sender:    sender,
		sched:     sched,
		debounce:  debounce,
		limiter:   rate.NewLimiter(rate.Every(debounce), 1),
		logger:    logging.ForSession("ordersync", sessionID),
	}
}

// Hash returns the structural hash of items. Only identity, name and
// owning image count; moves and resizes do not change it.
func Hash(items []Item) string {
	keys := make([][3]string, len(items))
	for i := range items {
		keys[i] = [3]string{items[i].ID, items[i].Name, items[i].ImageID}
	}
	return cache.GenerateKey("ordersync", keys)
}

// Update records the latest decoration list and schedules a flush unless
// the list is structurally identical to what was last delivered.
func (s *Syncer) Update(items []Item) {
	hash := Hash(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = append([]Item(nil), items...)
	s.pendingHash = hash
	s.hasPending = true

	if hash == s.lastHash && !s.inFlight {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		return
	}
	if s.inFlight {
		s.dirty = true
		return
	}
	s.scheduleLocked(s.debounce)
}

func (s *Syncer) scheduleLocked(d time.Duration) {
	s.scheduleAttemptLocked(d, true)
}

// scheduleAttemptLocked arms the flush timer. A failed timed flush with
// retry set re-attempts once after the debounce; nothing else would
// deliver the list until the next change or an explicit flush.
func (s *Syncer) scheduleAttemptLocked(d time.Duration, retry bool) {
	if s.timer != nil {
		return
	}
	s.timer = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()

		if _, err := s.Flush(context.Background()); err != nil && retry {
			s.mu.Lock()
			if !s.closed {
				s.scheduleAttemptLocked(s.debounce, false)
			}
			s.mu.Unlock()
		}
	})
}

// Flush delivers the pending list now. It never runs concurrently with
// another flush and honors the minimum spacing between deliveries by
// rescheduling itself. It returns one of the Result constants.
func (s *Syncer) Flush(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed || !s.hasPending {
		s.mu.Unlock()
		return ResultEmpty, nil
	}
	if s.inFlight {
		s.dirty = true
		s.mu.Unlock()
		metrics.RecordOrderSync(ResultInFlight, 0)
		return ResultInFlight, nil
	}
	if s.pendingHash == s.lastHash {
		s.mu.Unlock()
		metrics.RecordOrderSync(ResultUnchanged, 0)
		return ResultUnchanged, nil
	}
	now := s.sched.Now()
	if r := s.limiter.ReserveN(now, 1); r.DelayFrom(now) > 0 {
		delay := r.DelayFrom(now)
		r.CancelAt(now)
		s.scheduleLocked(delay)
		s.mu.Unlock()
		return ResultDeferred, nil
	}

	payload := Payload{SessionID: s.sessionID, Decorations: s.pending}
	hash := s.pendingHash
	s.inFlight = true
	s.dirty = false
	s.mu.Unlock()

	start := time.Now()
	err := s.sender.Send(ctx, payload)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.lastHash = hash
	}
	again := s.dirty && s.pendingHash != s.lastHash && !s.closed
	if again {
		s.scheduleLocked(s.debounce)
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordOrderSync(ResultFailed, elapsed)
		s.logger.Warn().Err(err).Int("decorations", len(payload.Decorations)).Msg("Order sync failed")
		return ResultFailed, err
	}
	metrics.RecordOrderSync(ResultSent, elapsed)
	s.logger.Debug().Int("decorations", len(payload.Decorations)).Dur("duration", elapsed).Msg("Order synced")
	return ResultSent, nil
}

// Close cancels a scheduled flush.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
