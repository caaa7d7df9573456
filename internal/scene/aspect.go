// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"fmt"

	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/logging"
)

// sizeHash keys one (natural, current) size pair.
func sizeHash(natural, current geometry.Size) string {
	return fmt.Sprintf("%.3f|%.3f|%.3f|%.3f", natural.Width, natural.Height, current.Width, current.Height)
}

// ApplyImageSize records the natural size of a decoration image. It is the
// completion callback of an image load and may also be called directly by a
// collaborator that already knows the size. Results for a URL the
// decoration no longer shows are dropped.
//
// The first successful load sizes the decoration to the base size. Later
// loads only correct the aspect ratio.
func (s *State) ApplyImageSize(id, url string, natural geometry.Size, ok bool) {
	_ = s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return nil
		}
		d := s.decorations[i]
		if d.pendingURL != url {
			s.logger.Debug().Str("decoration_id", id).Msg("Dropping stale image size")
			return nil
		}
		d.pendingURL = ""

		if !ok || !natural.Valid() {
			d.ImageFailed = true
			s.logger.Warn().Str("decoration_id", id).Str("url", logging.SanitizeURL(url)).Msg("Decoration image failed to load")
			s.replaceAt(i, d)
			out := d
			fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
			return nil
		}

		wasFailed := d.ImageFailed
		d.ImageFailed = false
		d.natural = natural

		changed := wasFailed
		if !d.sized {
			fitted := geometry.FitWithBaseSize(natural.Width, natural.Height, s.cfg.BaseSize, s.cfg.MinSize)
			d.Width, d.Height = fitted.Width, fitted.Height
			d.sized = true
			d.appliedHash = sizeHash(natural, fitted)
			changed = true
		} else if s.correctAspect(&d) {
			changed = true
		}

		s.replaceAt(i, d)
		if changed {
			out := d
			fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
		}
		return nil
	})
}

// CorrectAspect re-checks one decoration against its natural aspect ratio.
// It reports whether the size changed.
func (s *State) CorrectAspect(id string) (bool, error) {
	changed := false
	err := s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		d := s.decorations[i]
		if !s.correctAspect(&d) {
			return nil
		}
		changed = true
		s.replaceAt(i, d)
		out := d
		fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
		return nil
	})
	return changed, err
}

// correctAspect restores the natural aspect ratio of d when it drifted past
// the tolerance. Each distinct (natural, current) pair is handled at most
// once, so repeated checks never oscillate.
func (s *State) correctAspect(d *Decoration) bool {
	if !d.natural.Valid() {
		return false
	}
	current := d.Size()
	hash := sizeHash(d.natural, current)
	if hash == d.appliedHash {
		return false
	}
	d.appliedHash = hash
	if geometry.AspectWithin(current, d.natural, s.cfg.AspectTolerance) {
		return false
	}

	corrected := geometry.CorrectAspect(current, d.natural, s.cfg.MinSize)
	if corrected == current {
		return false
	}
	d.Width, d.Height = corrected.Width, corrected.Height
	d.appliedHash = sizeHash(d.natural, corrected)
	return true
}
