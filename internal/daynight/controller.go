// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package daynight

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/decorum/internal/clock"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
)

// Config holds the batch timeline durations.
type Config struct {
	// InitialDelay is the wait before the first image of a batch starts
	// converting.
	InitialDelay time.Duration
	// StepDuration is the animation length of one image; the next image
	// starts when it elapses.
	StepDuration time.Duration
	// SafetyNet is the deadline after which every still-incomplete image of
	// the batch is marked complete. It never fires before the last step ends.
	SafetyNet time.Duration
	// TickInterval is the progress reporting cadence while converting.
	TickInterval time.Duration
}

// DefaultConfig mirrors the historical 13 second conversion window.
func DefaultConfig() Config {
	return Config{
		InitialDelay: 500 * time.Millisecond,
		StepDuration: 4 * time.Second,
		SafetyNet:    13 * time.Second,
		TickInterval: 100 * time.Millisecond,
	}
}

// SourceImage is an uploaded photo that can serve as a background.
type SourceImage struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name"`
	DayThumbnailURL string `json:"dayThumbnailUrl" validate:"required"`
	NightURL        string `json:"nightUrl,omitempty"`
}

// ImageState is a read-only view of one tracked image.
type ImageState struct {
	SourceImage
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
}

// Event types raised by the controller.
const (
	EventStatus   = "conversion_status"
	EventProgress = "conversion_progress"
)

// Event reports a conversion change.
type Event struct {
	Type     string  `json:"type"`
	ImageID  string  `json:"imageId"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress,omitempty"`
	NightURL string  `json:"nightUrl,omitempty"`
}

// Target receives mode and night-variant changes and reports which
// background it currently shows. *scene.State satisfies it.
type Target interface {
	SetDayMode(day bool) error
	SetBackgroundNight(id, nightURL string) error
	BackgroundID() (string, bool)
}

type image struct {
	src       SourceImage
	status    Status
	startedAt time.Time
}

// Controller tracks conversion state per source image and owns the global
// day/night mode.
type Controller struct {
	cfg    Config
	sched  clock.Scheduler
	emit   func(Event)
	logger zerolog.Logger

	// modeMu serializes mode changes across the call into the target.
	modeMu sync.Mutex

	mu        sync.Mutex
	closed    bool
	images    map[string]*image
	order     []string
	active    string
	animating string
	dayMode   bool
	target    Target
	timers    map[uint64]clock.Timer
	timerSeq  uint64
}

// New creates a controller in day mode. A nil emit discards events and a
// nil sched uses the wall clock.
func New(cfg Config, sched clock.Scheduler, emit func(Event)) *Controller {
	if sched == nil {
		sched = clock.Real{}
	}
	if emit == nil {
		emit = func(Event) {}
	}
	def := DefaultConfig()
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.StepDuration <= 0 {
		cfg.StepDuration = def.StepDuration
	}
	if cfg.SafetyNet <= 0 {
		cfg.SafetyNet = def.SafetyNet
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	return &Controller{
		cfg:     cfg,
		sched:   sched,
		emit:    emit,
		logger:  logging.WithComponent("daynight"),
		images:  make(map[string]*image),
		timers:  make(map[uint64]clock.Timer),
		dayMode: true,
	}
}

// Bind sets the receiver of mode and night-variant changes.
func (c *Controller) Bind(t Target) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
}

// AddBatch registers newly uploaded images as pending and starts their
// timeline. Images already tracked are left alone. It returns how many
// images were added.
func (c *Controller) AddBatch(batch []SourceImage) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}

	var ids []string
	for _, src := range batch {
		if src.ID == "" {
			c.logger.Warn().Str("name", src.Name).Msg("Skipping source image without id")
			continue
		}
		if _, ok := c.images[src.ID]; ok {
			continue
		}
		c.images[src.ID] = &image{src: src, status: StatusPending}
		c.order = append(c.order, src.ID)
		ids = append(ids, src.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for i, id := range ids {
		delay := c.cfg.InitialDelay + time.Duration(i)*c.cfg.StepDuration
		c.after(delay, func() { c.startConverting(id) })
	}

	deadline := c.cfg.InitialDelay + time.Duration(len(ids))*c.cfg.StepDuration
	if c.cfg.SafetyNet > deadline {
		deadline = c.cfg.SafetyNet
	}
	c.after(deadline, func() { c.completeRemaining(ids) })

	c.logger.Info().Int("images", len(ids)).Dur("deadline", deadline).Msg("Conversion timeline started")
	return len(ids), nil
}

// after schedules fn and tracks the timer until it fires. c.mu must be held.
func (c *Controller) after(d time.Duration, fn func()) {
	c.timerSeq++
	key := c.timerSeq
	c.timers[key] = c.sched.AfterFunc(d, func() {
		c.forget(key)
		fn()
	})
}

// every schedules a repeating fn and tracks it until fn returns false.
// c.mu must be held.
func (c *Controller) every(interval time.Duration, fn func(time.Duration) bool) {
	c.timerSeq++
	key := c.timerSeq
	c.timers[key] = c.sched.Every(interval, func(elapsed time.Duration) bool {
		if fn(elapsed) {
			return true
		}
		c.forget(key)
		return false
	})
}

func (c *Controller) forget(key uint64) {
	c.mu.Lock()
	delete(c.timers, key)
	c.mu.Unlock()
}

func (c *Controller) startConverting(id string) {
	c.mu.Lock()
	img, ok := c.images[id]
	if c.closed || !ok || img.status != StatusPending {
		c.mu.Unlock()
		return
	}
	img.status = StatusConverting
	img.startedAt = c.sched.Now()
	c.animating = id
	c.every(c.cfg.TickInterval, func(elapsed time.Duration) bool {
		return c.progressTick(id, elapsed)
	})
	c.mu.Unlock()

	metrics.RecordConversionTransition(string(StatusConverting))
	c.emit(Event{Type: EventStatus, ImageID: id, Status: StatusConverting})
}

func (c *Controller) progressTick(id string, elapsed time.Duration) bool {
	c.mu.Lock()
	img, ok := c.images[id]
	if c.closed || !ok || img.status != StatusConverting {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	p := progress(elapsed, c.cfg.StepDuration)
	c.emit(Event{Type: EventProgress, ImageID: id, Status: StatusConverting, Progress: p})
	return p < 1
}

func progress(elapsed, step time.Duration) float64 {
	if step <= 0 {
		return 1
	}
	return math.Min(1, math.Max(0, float64(elapsed)/float64(step)))
}

// completeRemaining is the timeline's safety net.
func (c *Controller) completeRemaining(ids []string) {
	for _, id := range ids {
		changed, err := c.ApplyStatus(id, StatusComplete, "")
		if err != nil {
			return
		}
		if changed {
			c.logger.Debug().Str("image_id", id).Msg("Safety net marked image complete")
		}
	}
}

// ApplyStatus records a status reported by the conversion collaborator.
// Terminal states never change again and states never move backwards, so
// repeated or late reports are no-ops. nightURL, when set with a terminal
// status, becomes the image's night variant. It reports whether the status
// changed.
func (c *Controller) ApplyStatus(id string, status Status, nightURL string) (bool, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return false, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	img, ok := c.images[id]
	if !ok {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	if img.status.Terminal() || status.rank() <= img.status.rank() {
		c.mu.Unlock()
		return false, nil
	}

	img.status = status
	if status == StatusConverting {
		img.startedAt = c.sched.Now()
	}
	if status == StatusComplete && nightURL != "" {
		img.src.NightURL = nightURL
	}
	if status.Terminal() && c.animating == id {
		c.animating = ""
	}

	var night string
	if status == StatusComplete {
		night = img.src.NightURL
	}
	c.mu.Unlock()

	if night != "" && c.currentBackground() != id {
		night = ""
	}
	metrics.RecordConversionTransition(string(status))
	c.emit(Event{Type: EventStatus, ImageID: id, Status: status, NightURL: night})
	if target := c.boundTarget(); night != "" && target != nil {
		if err := target.SetBackgroundNight(id, night); err != nil {
			c.logger.Warn().Err(err).Str("image_id", id).Msg("Failed to apply night variant")
		}
	}
	return true, nil
}

// Activate makes id the active background source. Switching away from a
// background the scene currently shows fails with ErrBackgroundNotReady
// while id is still converting; with no background present any image may be
// shown in its day variant. The animating indicator moves off any other
// image; its timeline keeps running.
func (c *Controller) Activate(id string) (SourceImage, error) {
	shown, hasShown := c.shownBackground()

	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.images[id]
	if !ok {
		return SourceImage{}, fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	if !img.status.Terminal() && hasShown && shown != id {
		return SourceImage{}, ErrBackgroundNotReady
	}
	c.active = id
	if c.animating != id {
		c.animating = ""
	}
	return img.src, nil
}

// Deactivate forgets id as the active source when it no longer backs the
// scene, for example after the background was removed or replacing it
// failed.
func (c *Controller) Deactivate(id string) {
	c.mu.Lock()
	if c.active == id {
		c.active = ""
	}
	c.mu.Unlock()
}

// boundTarget returns the bound target, or nil.
func (c *Controller) boundTarget() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// shownBackground reports the background currently on screen: the bound
// target's when there is one, the last activation otherwise. c.mu must not
// be held.
func (c *Controller) shownBackground() (string, bool) {
	c.mu.Lock()
	target, active := c.target, c.active
	c.mu.Unlock()
	if target == nil {
		return active, active != ""
	}
	return target.BackgroundID()
}

// currentBackground returns the tracked image backing the scene, or "".
func (c *Controller) currentBackground() string {
	id, ok := c.shownBackground()
	if !ok {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, tracked := c.images[id]; !tracked {
		return ""
	}
	return id
}

// SetDayMode switches the global mode and forwards it to the bound target.
// The mode only changes once the target accepted it.
func (c *Controller) SetDayMode(day bool) error {
	c.modeMu.Lock()
	defer c.modeMu.Unlock()
	return c.setDayMode(day)
}

// Toggle flips the mode and returns the new value. Concurrent toggles
// apply one after another. On error the mode is unchanged and returned.
func (c *Controller) Toggle() (bool, error) {
	c.modeMu.Lock()
	defer c.modeMu.Unlock()

	day := !c.DayMode()
	if err := c.setDayMode(day); err != nil {
		return !day, err
	}
	return day, nil
}

func (c *Controller) setDayMode(day bool) error {
	c.mu.Lock()
	if c.dayMode == day {
		c.mu.Unlock()
		return nil
	}
	target := c.target
	c.mu.Unlock()

	if target != nil {
		if err := target.SetDayMode(day); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.dayMode = day
	c.mu.Unlock()
	return nil
}

// DayMode reports the global mode.
func (c *Controller) DayMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayMode
}

// Status returns the state of one image.
func (c *Controller) Status(id string) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[id]
	if !ok {
		return "", false
	}
	return img.status, true
}

// IsReady reports whether id may become the active background.
func (c *Controller) IsReady(id string) bool {
	st, ok := c.Status(id)
	return ok && st.Terminal()
}

// Images returns every tracked image in upload order.
func (c *Controller) Images() []ImageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.sched.Now()
	out := make([]ImageState, 0, len(c.order))
	for _, id := range c.order {
		img := c.images[id]
		out = append(out, ImageState{SourceImage: img.src, Status: img.status, Progress: c.progressOf(img, now)})
	}
	return out
}

// Progress returns the animation progress of id in [0, 1].
func (c *Controller) Progress(id string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[id]
	if !ok {
		return 0
	}
	return c.progressOf(img, c.sched.Now())
}

func (c *Controller) progressOf(img *image, now time.Time) float64 {
	switch img.status {
	case StatusPending:
		return 0
	case StatusConverting:
		return progress(now.Sub(img.startedAt), c.cfg.StepDuration)
	default:
		return 1
	}
}

// Animating returns the image the UI shows as converting, or "".
func (c *Controller) Animating() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animating
}

// Active returns the source image backing the scene background, or "".
func (c *Controller) Active() string {
	return c.currentBackground()
}

// Close cancels every pending timer. Later callbacks are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	timers := make([]clock.Timer, 0, len(c.timers))
	for key, t := range c.timers {
		timers = append(timers, t)
		delete(c.timers, key)
	}
	c.closed = true
	c.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}
