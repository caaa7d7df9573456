// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package daynight

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrBackgroundNotReady = errors.New("background not ready")
	ErrUnknownImage       = errors.New("unknown source image")
	ErrInvalidStatus      = errors.New("invalid conversion status")
	ErrClosed             = errors.New("controller closed")
)

// Status is the conversion state of one source image.
type Status string

// Conversion states. Failed and Unavailable are terminal like Complete but
// leave the image without a night variant.
const (
	StatusPending     Status = "pending"
	StatusConverting  Status = "converting"
	StatusComplete    Status = "complete"
	StatusFailed      Status = "failed"
	StatusUnavailable Status = "unavailable"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusUnavailable
}

func (s Status) rank() int {
	switch {
	case s == StatusPending:
		return 0
	case s == StatusConverting:
		return 1
	default:
		return 2
	}
}

// ParseStatus validates a status reported by the conversion collaborator.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConverting, StatusComplete, StatusFailed, StatusUnavailable:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}
