// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/decorum/internal/cartouche"
	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/logging"
)

// ImageResolver resolves natural image sizes asynchronously. done must be
// called exactly once; ok=false means the size is unavailable.
type ImageResolver interface {
	ResolveAsync(ctx context.Context, url string, done func(size geometry.Size, ok bool))
}

// Config holds scene tuning values in logical units.
type Config struct {
	SnapThreshold    float64
	BackgroundMargin float64
	BaseSize         float64
	MinSize          float64
	AspectTolerance  float64
	OffsetStep       float64
	OffsetMaxTries   int
	TapThreshold     float64
}

// DefaultConfig returns the standard designer tuning.
func DefaultConfig() Config {
	return Config{
		SnapThreshold:    geometry.DefaultSnapThreshold,
		BackgroundMargin: geometry.DefaultBackgroundMargin,
		BaseSize:         150,
		MinSize:          20,
		AspectTolerance:  0.01,
		OffsetStep:       geometry.DefaultOffsetStep,
		OffsetMaxTries:   geometry.DefaultOffsetMaxTries,
		TapThreshold:     5,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SnapThreshold <= 0 {
		c.SnapThreshold = def.SnapThreshold
	}
	if c.BackgroundMargin <= 0 || c.BackgroundMargin > 1 {
		c.BackgroundMargin = def.BackgroundMargin
	}
	if c.BaseSize <= 0 {
		c.BaseSize = def.BaseSize
	}
	if c.MinSize <= 0 {
		c.MinSize = def.MinSize
	}
	if c.AspectTolerance <= 0 {
		c.AspectTolerance = def.AspectTolerance
	}
	if c.OffsetStep <= 0 {
		c.OffsetStep = def.OffsetStep
	}
	if c.OffsetMaxTries <= 0 {
		c.OffsetMaxTries = def.OffsetMaxTries
	}
	if c.TapThreshold <= 0 {
		c.TapThreshold = def.TapThreshold
	}
	return c
}

// State is the owned state of one designer scene.
type State struct {
	id       string
	cfg      Config
	resolver ImageResolver
	sink     EventSink
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	turn emitTurn

	mu          sync.Mutex
	closed      bool
	seq         uint64
	background  *Background
	decorations []Decoration
	selectedID  string
	zones       []geometry.Zone
	zoneEdit    bool
	dayMode     bool
	cartouche   cartouche.Tracker
	gesture     *gesture
}

// New creates an empty scene in day mode. A nil sink discards events.
func New(id string, cfg Config, resolver ImageResolver, sink EventSink) *State {
	if sink == nil {
		sink = discardSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &State{
		id:       id,
		cfg:      cfg.withDefaults(),
		resolver: resolver,
		sink:     sink,
		logger:   logging.With().Str("component", "scene").Str("scene_id", id).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		dayMode:  true,
	}
}

// ID returns the scene identifier.
func (s *State) ID() string { return s.id }

// Config returns the effective scene configuration.
func (s *State) Config() Config { return s.cfg }

// Close cancels outstanding image loads. Late results are dropped and
// further mutations fail with ErrClosed.
func (s *State) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// effects collects what an operation must do once the lock is released.
type effects struct {
	events []Event
	loads  []imageLoad
}

func (fx *effects) emit(e Event) {
	fx.events = append(fx.events, e)
}

type loadTarget int

const (
	targetBackground loadTarget = iota
	targetDecoration
)

type imageLoad struct {
	target loadTarget
	id     string
	url    string
}

// apply runs fn under the scene lock, numbers the collected events, raises
// them in order and starts the collected image loads. Events of concurrent
// operations reach the sink in the order their mutations happened.
func (s *State) apply(fn func(fx *effects) error) error {
	var fx effects

	s.mu.Lock()
	var err error
	if s.closed {
		err = ErrClosed
	} else {
		err = fn(&fx)
	}
	first := s.seq + 1
	for i := range fx.events {
		s.seq++
		fx.events[i].Seq = s.seq
		fx.events[i].SceneID = s.id
	}
	s.mu.Unlock()

	if len(fx.events) > 0 {
		s.turn.wait(first)
		for i := range fx.events {
			s.sink.Emit(fx.events[i])
		}
		s.turn.advance(first + uint64(len(fx.events)))
	}
	for _, l := range fx.loads {
		s.startLoad(l)
	}
	return err
}

// emitTurn hands the sink to operations in sequence order. Waiting happens
// outside the scene lock so sinks may read the scene while delivering; a
// sink that synchronously mutates the same scene would wait forever.
type emitTurn struct {
	mu   sync.Mutex
	cond *sync.Cond
	next uint64
}

func (t *emitTurn) wait(seq uint64) {
	t.mu.Lock()
	if t.cond == nil {
		t.cond = sync.NewCond(&t.mu)
		t.next = 1
	}
	for t.next != seq {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

func (t *emitTurn) advance(next uint64) {
	t.mu.Lock()
	t.next = next
	if t.cond != nil {
		t.cond.Broadcast()
	}
	t.mu.Unlock()
}

func (s *State) startLoad(l imageLoad) {
	if s.resolver == nil {
		return
	}
	s.resolver.ResolveAsync(s.ctx, l.url, func(size geometry.Size, ok bool) {
		switch l.target {
		case targetBackground:
			s.applyBackgroundSize(l.id, l.url, size, ok)
		case targetDecoration:
			s.ApplyImageSize(l.id, l.url, size, ok)
		}
	})
}

// Snapshot returns a consistent copy of the scene.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           s.id,
		Decorations:  append([]Decoration{}, s.decorations...),
		SelectedID:   s.selectedID,
		Zones:        append([]geometry.Zone{}, s.zones...),
		ZoneEditMode: s.zoneEdit,
		DayMode:      s.dayMode,
		Cartouche:    s.cartouche.Current(),
	}
	if s.background != nil {
		bg := *s.background
		snap.Background = &bg
	}
	return snap
}

// Background returns a copy of the active background.
func (s *State) Background() (Background, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.background == nil {
		return Background{}, false
	}
	return *s.background, true
}

// BackgroundID returns the id of the active background.
func (s *State) BackgroundID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.background == nil {
		return "", false
	}
	return s.background.ID, true
}

// HasBackground reports whether a background is present.
func (s *State) HasBackground() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background != nil
}

// SetBackground places a new background at the scene center, replacing any
// previous one. The replaced background raises background_image_removed.
// Its cartouche is carried over only when opts.PreserveCartouche is set and
// the new background brings no cartouche of its own.
func (s *State) SetBackground(in BackgroundInput, opts BackgroundOptions) (Background, error) {
	var out Background
	err := s.apply(func(fx *effects) error {
		if in.ID == "" || (in.DayURL == "" && in.NightURL == "") {
			return ErrInvalidBackground
		}

		var carried *cartouche.Info
		if prev := s.background; prev != nil {
			if opts.PreserveCartouche && prev.Cartouche != nil {
				info := *prev.Cartouche
				carried = &info
			}
			if prev.ID != in.ID {
				fx.emit(Event{Type: EventBackgroundRemoved, BackgroundID: prev.ID})
			}
		}

		provisional := geometry.FitToBox(geometry.SceneWidth/geometry.SceneHeight,
			geometry.SceneWidth, geometry.SceneHeight, s.cfg.BackgroundMargin)
		center := geometry.SceneCenter()
		bg := &Background{
			ID:            in.ID,
			DayURL:        in.DayURL,
			NightURL:      in.NightURL,
			X:             center.X,
			Y:             center.Y,
			Width:         provisional.Width,
			Height:        provisional.Height,
			IsSourceImage: in.IsSourceImage,
		}
		switch {
		case in.Cartouche != nil:
			info := *in.Cartouche
			bg.Cartouche = &info
		case carried != nil:
			bg.Cartouche = carried
		}
		bg.IsCartouche = bg.Cartouche != nil && bg.Cartouche.HasCartouche
		bg.Src = ActiveSource(bg.DayURL, bg.NightURL, s.dayMode)
		bg.pendingURL = bg.Src

		s.background = bg
		s.refreshCartouche(fx)

		out = *bg
		fx.emit(Event{Type: EventBackgroundSet, BackgroundID: bg.ID, Background: &out})
		fx.loads = append(fx.loads, imageLoad{target: targetBackground, id: bg.ID, url: bg.Src})
		return nil
	})
	return out, err
}

// RemoveBackground removes the background and its cartouche overlay.
// Decorations are kept.
func (s *State) RemoveBackground() error {
	return s.apply(func(fx *effects) error {
		if s.background == nil {
			return ErrNoBackground
		}
		id := s.background.ID
		s.background = nil
		s.refreshCartouche(fx)
		fx.emit(Event{Type: EventBackgroundRemoved, BackgroundID: id})
		return nil
	})
}

// SetBackgroundNight records the night variant of the background once its
// conversion has produced one. It is ignored when id is not the active
// background.
func (s *State) SetBackgroundNight(id, nightURL string) error {
	return s.apply(func(fx *effects) error {
		bg := s.background
		if bg == nil || bg.ID != id || bg.NightURL == nightURL {
			return nil
		}
		bg.NightURL = nightURL
		s.refreshBackgroundSource(fx)
		return nil
	})
}

// SetCartouche replaces the cartouche metadata of the active background.
func (s *State) SetCartouche(info cartouche.Info) (*cartouche.Overlay, error) {
	var overlay *cartouche.Overlay
	err := s.apply(func(fx *effects) error {
		if s.background == nil {
			fx.emit(Event{Type: EventBackgroundRequired, Action: "set_cartouche"})
			return ErrBackgroundRequired
		}
		c := info
		s.background.Cartouche = &c
		s.background.IsCartouche = info.HasCartouche
		s.refreshCartouche(fx)
		overlay = s.cartouche.Current()
		return nil
	})
	return overlay, err
}

// Cartouche returns the live cartouche overlay, or nil.
func (s *State) Cartouche() *cartouche.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartouche.Current()
}

// refreshCartouche rebinds the overlay to the background (lock held).
func (s *State) refreshCartouche(fx *effects) {
	var (
		anchor string
		info   cartouche.Info
	)
	if bg := s.background; bg != nil && bg.Cartouche != nil {
		anchor = bg.ID
		info = *bg.Cartouche
	}
	if _, recreated := s.cartouche.Update(anchor, info); recreated {
		fx.emit(Event{Type: EventCartoucheChanged, BackgroundID: anchor})
	}
}

// refreshBackgroundSource re-evaluates the background src (lock held).
func (s *State) refreshBackgroundSource(fx *effects) {
	bg := s.background
	if bg == nil {
		return
	}
	src := ActiveSource(bg.DayURL, bg.NightURL, s.dayMode)
	if src == bg.Src {
		return
	}
	bg.Src = src
	bg.pendingURL = src
	bg.ImageFailed = false
	fx.loads = append(fx.loads, imageLoad{target: targetBackground, id: bg.ID, url: src})
}

func (s *State) applyBackgroundSize(id, url string, natural geometry.Size, ok bool) {
	_ = s.apply(func(fx *effects) error {
		bg := s.background
		if bg == nil || bg.ID != id || bg.pendingURL != url {
			s.logger.Debug().Str("background_id", id).Msg("Dropping stale background size")
			return nil
		}
		bg.pendingURL = ""
		if !ok {
			bg.ImageFailed = true
			s.logger.Warn().Str("background_id", id).Str("url", logging.SanitizeURL(url)).Msg("Background image failed to load")
			return nil
		}
		bg.ImageFailed = false
		if natural == bg.natural {
			return nil
		}
		bg.natural = natural
		fitted := geometry.FitBackground(natural, s.cfg.BackgroundMargin)
		bg.Width, bg.Height = fitted.Width, fitted.Height
		out := *bg
		fx.emit(Event{Type: EventBackgroundSet, BackgroundID: id, Background: &out})
		return nil
	})
}

// SetDayMode switches every decoration and the background to the day or
// night variant. Decorations without a night URL keep their day URL.
func (s *State) SetDayMode(day bool) error {
	return s.apply(func(fx *effects) error {
		if s.dayMode == day {
			return nil
		}
		s.dayMode = day
		s.refreshBackgroundSource(fx)

		next := make([]Decoration, len(s.decorations))
		copy(next, s.decorations)
		for i := range next {
			d := &next[i]
			src := ActiveSource(d.DayURL, d.NightURL, day)
			if src == d.Src {
				continue
			}
			d.Src = src
			d.pendingURL = src
			d.ImageFailed = false
			fx.loads = append(fx.loads, imageLoad{target: targetDecoration, id: d.ID, url: src})
		}
		s.decorations = next

		mode := day
		fx.emit(Event{Type: EventModeChanged, DayMode: &mode})
		return nil
	})
}

// DayMode reports the current mode.
func (s *State) DayMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayMode
}

// SetZones replaces the snap zones.
func (s *State) SetZones(zones []geometry.Zone) error {
	return s.apply(func(_ *effects) error {
		s.zones = append([]geometry.Zone{}, zones...)
		return nil
	})
}

// Zones returns a copy of the snap zones.
func (s *State) Zones() []geometry.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geometry.Zone{}, s.zones...)
}

// SetZoneEditMode toggles zone editing. While editing zones, clicks on the
// empty scene do not clear the selection.
func (s *State) SetZoneEditMode(on bool) error {
	return s.apply(func(_ *effects) error {
		s.zoneEdit = on
		return nil
	})
}

// Select marks one decoration active.
func (s *State) Select(id string) error {
	return s.apply(func(fx *effects) error {
		if s.indexOf(id) < 0 {
			return ErrDecorationNotFound
		}
		s.setSelection(fx, id)
		return nil
	})
}

// ClearSelection deselects unconditionally.
func (s *State) ClearSelection() error {
	return s.apply(func(fx *effects) error {
		s.setSelection(fx, "")
		return nil
	})
}

// ClickEmpty handles a click on empty scene area. It clears the selection
// unless zone editing is on; the returned bool reports whether it did.
func (s *State) ClickEmpty() (bool, error) {
	cleared := false
	err := s.apply(func(fx *effects) error {
		if s.zoneEdit {
			return nil
		}
		cleared = s.selectedID != ""
		s.setSelection(fx, "")
		return nil
	})
	return cleared, err
}

// Selected returns the selected decoration ID, or "".
func (s *State) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

func (s *State) setSelection(fx *effects, id string) {
	if s.selectedID == id {
		return
	}
	s.selectedID = id
	fx.emit(Event{Type: EventSelectionChanged, SelectedID: id})
}
