// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package daynight

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/decorum/internal/clock"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) emit(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) statuses(id string) []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Status
	for _, e := range l.events {
		if e.Type == EventStatus && e.ImageID == id {
			out = append(out, e.Status)
		}
	}
	return out
}

type fakeTarget struct {
	mu      sync.Mutex
	modes   []bool
	nights  map[string]string
	bg      string
	modeErr error
}

func (f *fakeTarget) SetDayMode(day bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modeErr != nil {
		return f.modeErr
	}
	f.modes = append(f.modes, day)
	return nil
}

func (f *fakeTarget) BackgroundID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bg, f.bg != ""
}

func (f *fakeTarget) show(id string) {
	f.mu.Lock()
	f.bg = id
	f.mu.Unlock()
}

func (f *fakeTarget) SetBackgroundNight(id, url string) error {
	f.mu.Lock()
	if f.nights == nil {
		f.nights = make(map[string]string)
	}
	f.nights[id] = url
	f.mu.Unlock()
	return nil
}

func newTestController(t *testing.T) (*Controller, *clock.Manual, *eventLog) {
	t.Helper()
	sched := clock.NewManual(time.Unix(0, 0))
	log := &eventLog{}
	c := New(DefaultConfig(), sched, log.emit)
	t.Cleanup(c.Close)
	return c, sched, log
}

func batch(ids ...string) []SourceImage {
	out := make([]SourceImage, len(ids))
	for i, id := range ids {
		out[i] = SourceImage{ID: id, Name: id, DayThumbnailURL: "https://img.test/" + id + ".jpg"}
	}
	return out
}

func expectStatus(t *testing.T, c *Controller, id string, want Status) {
	t.Helper()
	got, ok := c.Status(id)
	if !ok {
		t.Fatalf("expected image %s to be tracked", id)
	}
	if got != want {
		t.Errorf("expected %s to be %s, got %s", id, want, got)
	}
}

func TestTimeline_ThreeImagesCompleteThroughSafetyNet(t *testing.T) {
	t.Parallel()
	c, sched, _ := newTestController(t)

	n, err := c.AddBatch(batch("a", "b", "c"))
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 images added, got %d", n)
	}
	for _, id := range []string{"a", "b", "c"} {
		expectStatus(t, c, id, StatusPending)
	}

	sched.Advance(500 * time.Millisecond)
	expectStatus(t, c, "a", StatusConverting)
	expectStatus(t, c, "b", StatusPending)
	if got := c.Animating(); got != "a" {
		t.Errorf("expected a animating, got %q", got)
	}

	sched.Advance(4 * time.Second)
	expectStatus(t, c, "b", StatusConverting)
	if got := c.Animating(); got != "b" {
		t.Errorf("expected b animating, got %q", got)
	}

	sched.Advance(4 * time.Second)
	expectStatus(t, c, "c", StatusConverting)

	// The last step ends at 12.5s; the safety net fires at 13s.
	sched.Advance(4 * time.Second)
	expectStatus(t, c, "c", StatusConverting)
	sched.Advance(500 * time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		expectStatus(t, c, id, StatusComplete)
		if !c.IsReady(id) {
			t.Errorf("expected %s ready", id)
		}
	}
	if got := c.Animating(); got != "" {
		t.Errorf("expected nothing animating, got %q", got)
	}
}

func TestTimeline_ProgressIsElapsedBased(t *testing.T) {
	t.Parallel()
	c, sched, log := newTestController(t)
	_, _ = c.AddBatch(batch("a"))

	sched.Advance(500 * time.Millisecond)
	sched.Advance(2 * time.Second)
	if got := c.Progress("a"); got < 0.49 || got > 0.51 {
		t.Errorf("expected progress near 0.5, got %v", got)
	}

	sched.Advance(3 * time.Second)
	if got := c.Progress("a"); got != 1 {
		t.Errorf("expected progress capped at 1, got %v", got)
	}

	log.mu.Lock()
	ticks := 0
	for _, e := range log.events {
		if e.Type == EventProgress {
			ticks++
		}
	}
	log.mu.Unlock()
	if ticks == 0 {
		t.Error("expected progress events while converting")
	}
}

func TestApplyStatus_FeedIsPrimaryAndIdempotent(t *testing.T) {
	t.Parallel()
	c, sched, log := newTestController(t)
	_, _ = c.AddBatch(batch("a", "b"))

	changed, err := c.ApplyStatus("b", StatusComplete, "https://img.test/b-night.jpg")
	if err != nil || !changed {
		t.Fatalf("expected feed to complete b, changed=%v err=%v", changed, err)
	}
	changed, err = c.ApplyStatus("b", StatusComplete, "")
	if err != nil || changed {
		t.Errorf("expected repeated complete to be a no-op, changed=%v err=%v", changed, err)
	}

	// The timeline must not pull a completed image back to converting.
	sched.Advance(5 * time.Second)
	expectStatus(t, c, "b", StatusComplete)
	if got := log.statuses("b"); len(got) != 1 {
		t.Errorf("expected a single status event for b, got %v", got)
	}

	if imgs := c.Images(); imgs[1].NightURL != "https://img.test/b-night.jpg" {
		t.Errorf("expected night url recorded, got %q", imgs[1].NightURL)
	}
}

func TestApplyStatus_NeverReverts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		steps []Status
		want  Status
	}{
		{"pending after converting ignored", []Status{StatusConverting, StatusPending}, StatusConverting},
		{"converting after complete ignored", []Status{StatusComplete, StatusConverting}, StatusComplete},
		{"failed is terminal", []Status{StatusFailed, StatusComplete}, StatusFailed},
		{"unavailable is terminal", []Status{StatusUnavailable, StatusComplete}, StatusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _, _ := newTestController(t)
			_, _ = c.AddBatch(batch("a"))
			for _, st := range tt.steps {
				if _, err := c.ApplyStatus("a", st, ""); err != nil {
					t.Fatalf("ApplyStatus failed: %v", err)
				}
			}
			expectStatus(t, c, "a", tt.want)
		})
	}
}

func TestApplyStatus_Errors(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a"))

	if _, err := c.ApplyStatus("missing", StatusComplete, ""); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("expected ErrUnknownImage, got %v", err)
	}
	if _, err := c.ApplyStatus("a", Status("done"), ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestActivate_BlocksSwitchUntilReady(t *testing.T) {
	t.Parallel()
	c, sched, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a", "b"))

	if _, err := c.Activate("a"); err != nil {
		t.Fatalf("expected first activation to succeed, got %v", err)
	}
	if _, err := c.Activate("b"); !errors.Is(err, ErrBackgroundNotReady) {
		t.Fatalf("expected ErrBackgroundNotReady, got %v", err)
	}
	if got := c.Active(); got != "a" {
		t.Errorf("expected a to stay active, got %q", got)
	}

	_, _ = c.ApplyStatus("b", StatusComplete, "")
	src, err := c.Activate("b")
	if err != nil {
		t.Fatalf("expected switch after completion, got %v", err)
	}
	if src.ID != "b" {
		t.Errorf("expected source b, got %q", src.ID)
	}

	// a keeps converting in the background after the switch.
	sched.Advance(500 * time.Millisecond)
	expectStatus(t, c, "a", StatusConverting)
	if _, err := c.Activate("missing"); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("expected ErrUnknownImage, got %v", err)
	}
}

func TestActivate_IndicatorMovesOnButTimerContinues(t *testing.T) {
	t.Parallel()
	c, sched, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a", "b"))
	_, _ = c.ApplyStatus("a", StatusComplete, "")

	sched.Advance(4500 * time.Millisecond)
	if got := c.Animating(); got != "b" {
		t.Fatalf("expected b animating, got %q", got)
	}
	if _, err := c.Activate("a"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if got := c.Animating(); got != "" {
		t.Errorf("expected indicator to move off b, got %q", got)
	}

	sched.Advance(10 * time.Second)
	expectStatus(t, c, "b", StatusComplete)
}

func TestNightVariantForwardedToActiveBackground(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	target := &fakeTarget{}
	c.Bind(target)
	_, _ = c.AddBatch(batch("a"))
	_, _ = c.Activate("a")
	target.show("a")

	_, _ = c.ApplyStatus("a", StatusComplete, "https://img.test/a-night.jpg")

	target.mu.Lock()
	defer target.mu.Unlock()
	if got := target.nights["a"]; got != "https://img.test/a-night.jpg" {
		t.Errorf("expected night url forwarded, got %q", got)
	}
}

func TestSetDayMode_PropagatesAndDoubleToggleRestores(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	target := &fakeTarget{}
	c.Bind(target)

	day, err := c.Toggle()
	if err != nil || day {
		t.Fatalf("expected night after toggle, day=%v err=%v", day, err)
	}
	day, _ = c.Toggle()
	if !day {
		t.Error("expected day after second toggle")
	}
	_ = c.SetDayMode(true)

	target.mu.Lock()
	defer target.mu.Unlock()
	if len(target.modes) != 2 || target.modes[0] || !target.modes[1] {
		t.Errorf("expected modes [false true], got %v", target.modes)
	}
}

func TestClose_CancelsTimers(t *testing.T) {
	t.Parallel()
	c, sched, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a", "b"))

	c.Close()
	sched.Advance(time.Minute)

	expectStatus(t, c, "a", StatusPending)
	expectStatus(t, c, "b", StatusPending)
	if n := sched.Pending(); n != 0 {
		t.Errorf("expected no live timers, got %d", n)
	}
	if _, err := c.AddBatch(batch("c")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestAddBatch_SkipsKnownAndBlankIDs(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a"))

	n, err := c.AddBatch([]SourceImage{{ID: "a"}, {ID: ""}, {ID: "b"}})
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 new image, got %d", n)
	}
	if got := len(c.Images()); got != 2 {
		t.Errorf("expected 2 tracked images, got %d", got)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"complete", StatusComplete, false},
		{" Converting ", StatusConverting, false},
		{"FAILED", StatusFailed, false},
		{"unknown", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestActivate_GateFollowsShownBackground(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shown   string
		wantErr error
	}{
		{"another background shown", "uploaded-elsewhere", ErrBackgroundNotReady},
		{"no background shown", "", nil},
		{"same image shown", "b", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, sched, _ := newTestController(t)
			target := &fakeTarget{}
			c.Bind(target)
			_, _ = c.AddBatch(batch("a", "b"))
			sched.Advance(4500 * time.Millisecond)
			expectStatus(t, c, "b", StatusConverting)

			target.show(tt.shown)
			_, err := c.Activate("b")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestActivate_RemovedBackgroundNoLongerBlocks(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	_, _ = c.AddBatch(batch("a", "b"))

	if _, err := c.Activate("a"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	c.Deactivate("a")
	if got := c.Active(); got != "" {
		t.Errorf("expected no active image, got %q", got)
	}
	if _, err := c.Activate("b"); err != nil {
		t.Errorf("expected pending image to activate after removal, got %v", err)
	}
}

func TestActive_ReflectsBoundTarget(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	target := &fakeTarget{}
	c.Bind(target)
	_, _ = c.AddBatch(batch("a"))

	_, _ = c.Activate("a")
	if got := c.Active(); got != "" {
		t.Errorf("expected no active image before the scene shows it, got %q", got)
	}
	target.show("a")
	if got := c.Active(); got != "a" {
		t.Errorf("expected a active, got %q", got)
	}
	target.show("not-a-source-image")
	if got := c.Active(); got != "" {
		t.Errorf("expected untracked background to report none, got %q", got)
	}
}

func TestSetDayMode_TargetFailureKeepsMode(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	boom := errors.New("scene closed")
	target := &fakeTarget{modeErr: boom}
	c.Bind(target)

	if err := c.SetDayMode(false); !errors.Is(err, boom) {
		t.Fatalf("expected target error, got %v", err)
	}
	if !c.DayMode() {
		t.Error("expected day mode kept after failed switch")
	}

	day, err := c.Toggle()
	if !errors.Is(err, boom) {
		t.Fatalf("expected target error from toggle, got %v", err)
	}
	if !day || !c.DayMode() {
		t.Errorf("expected toggle to report unchanged day mode, got day=%v mode=%v", day, c.DayMode())
	}
}

func TestToggle_ConcurrentTogglesNetOut(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestController(t)
	target := &fakeTarget{}
	c.Bind(target)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Toggle(); err != nil {
				t.Errorf("Toggle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if !c.DayMode() {
		t.Error("expected an even number of toggles to end in day mode")
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if len(target.modes) != n {
		t.Fatalf("expected %d mode changes, got %d", n, len(target.modes))
	}
	for i, day := range target.modes {
		if day != (i%2 == 1) {
			t.Fatalf("expected alternating modes, got %v", target.modes)
		}
	}
}

func TestTimers_FiredTimersAreReleased(t *testing.T) {
	t.Parallel()
	c, sched, _ := newTestController(t)

	for round := 0; round < 5; round++ {
		ids := []string{
			"r" + string(rune('a'+round)) + "1",
			"r" + string(rune('a'+round)) + "2",
		}
		if _, err := c.AddBatch(batch(ids...)); err != nil {
			t.Fatalf("AddBatch failed: %v", err)
		}
		sched.Advance(time.Minute)
	}

	c.mu.Lock()
	live := len(c.timers)
	c.mu.Unlock()
	if live != 0 {
		t.Errorf("expected no tracked timers after every timeline finished, got %d", live)
	}
	if n := sched.Pending(); n != 0 {
		t.Errorf("expected no live timers, got %d", n)
	}
}
