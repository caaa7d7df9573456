// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/render"
	"github.com/tomtom215/decorum/internal/scene"
	"github.com/tomtom215/decorum/internal/store"
	"github.com/tomtom215/decorum/internal/validation"
)

// Session registry errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrRegistryClosed  = errors.New("session registry closed")
)

// errorMapping translates a sentinel into an HTTP status and error code.
type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{ErrSessionNotFound, http.StatusNotFound, ErrCodeSessionNotFound},
	{ErrSessionLimit, http.StatusServiceUnavailable, ErrCodeSessionLimit},
	{ErrRegistryClosed, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	{scene.ErrClosed, http.StatusGone, ErrCodeSessionClosed},
	{daynight.ErrClosed, http.StatusGone, ErrCodeSessionClosed},
	{scene.ErrBackgroundRequired, http.StatusConflict, ErrCodeBackgroundRequired},
	{scene.ErrNoBackground, http.StatusConflict, ErrCodeNoBackground},
	{scene.ErrDecorationNotFound, http.StatusNotFound, ErrCodeDecorationNotFound},
	{scene.ErrNoGesture, http.StatusConflict, ErrCodeNoGesture},
	{scene.ErrInvalidDecoration, http.StatusBadRequest, ErrCodeBadRequest},
	{scene.ErrInvalidBackground, http.StatusBadRequest, ErrCodeBadRequest},
	{daynight.ErrBackgroundNotReady, http.StatusConflict, ErrCodeBackgroundNotReady},
	{daynight.ErrUnknownImage, http.StatusNotFound, ErrCodeUnknownImage},
	{daynight.ErrInvalidStatus, http.StatusBadRequest, ErrCodeBadRequest},
	{render.ErrInvalidPixelRatio, http.StatusBadRequest, ErrCodeInvalidPixelRatio},
	{store.ErrNotFound, http.StatusNotFound, ErrCodeExportNotFound},
}

// respondError writes the envelope for err. Unmapped errors are logged and
// reported as 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			rw.Error(m.status, m.code, err.Error())
			return
		}
	}
	rw.InternalError(err)
}
