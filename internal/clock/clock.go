// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package clock abstracts timers so timelines and debouncers can be stepped
// deterministically in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancelable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs delayed and repeating callbacks. Callbacks run outside any
// scheduler lock and may schedule further work.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f each interval with the time elapsed since Every was
	// called, until f returns false or the timer is stopped.
	Every(interval time.Duration, f func(elapsed time.Duration) bool) Timer
}

// Real schedules on the wall clock.
type Real struct{}

// Now implements Scheduler.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Every implements Scheduler.
func (Real) Every(interval time.Duration, f func(elapsed time.Duration) bool) Timer {
	t := &tickTimer{done: make(chan struct{})}
	start := time.Now()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case now := <-ticker.C:
				if !f(now.Sub(start)) {
					t.Stop()
					return
				}
			}
		}
	}()
	return t
}

type tickTimer struct {
	once sync.Once
	done chan struct{}
}

func (t *tickTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.done)
		stopped = true
	})
	return stopped
}

// Manual is a Scheduler driven by Advance. Tests use it to step
// through timelines deterministically.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *Manual
	at      time.Time
	seq     int
	start   time.Time
	every   time.Duration
	fn      func()
	tick    func(time.Duration) bool
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewManual returns a scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler.
func (s *Manual) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc implements Scheduler.
func (s *Manual) AfterFunc(d time.Duration, f func()) Timer {
	return s.add(&manualTimer{at: s.Now().Add(d), fn: f})
}

// Every implements Scheduler.
func (s *Manual) Every(interval time.Duration, f func(elapsed time.Duration) bool) Timer {
	if interval <= 0 {
		interval = time.Millisecond
	}
	now := s.Now()
	return s.add(&manualTimer{at: now.Add(interval), start: now, every: interval, tick: f})
}

func (s *Manual) add(t *manualTimer) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.s = s
	s.seq++
	t.seq = s.seq
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due
// in time order. Timers scheduled by callbacks fire too if they fall inside
// the window.
func (s *Manual) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		if t.every > 0 {
			elapsed := t.at.Sub(t.start)
			s.mu.Lock()
			t.at = t.at.Add(t.every)
			s.mu.Unlock()
			if !t.tick(elapsed) {
				t.Stop()
			}
			continue
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// nextDue pops the earliest live timer due at or before target and moves
// the clock to it. Repeating timers stay queued.
func (s *Manual) nextDue(target time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at.Equal(s.timers[j].at) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at.Before(s.timers[j].at)
	})
	if len(s.timers) == 0 || s.timers[0].at.After(target) {
		return nil
	}

	t := s.timers[0]
	s.now = t.at
	if t.every == 0 {
		t.stopped = true
		s.timers = s.timers[1:]
	}
	return t
}

// Pending returns the number of live timers.
func (s *Manual) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
