// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/decorum/internal/logging"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when missing", "", false},
		{"keeps upstream id", "proxy-abc-123", true},
		{"rejects whitespace", "bad id", false},
		{"rejects control characters", "id\r\nX-Injected: 1", false},
		{"rejects oversized", strings.Repeat("a", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen, logged string
			handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
				logged = logging.RequestIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if tt.keep && seen != tt.incoming {
				t.Errorf("expected %q, got %q", tt.incoming, seen)
			}
			if !tt.keep {
				if _, err := uuid.Parse(seen); err != nil {
					t.Errorf("expected generated uuid, got %q", seen)
				}
			}
			if got := rec.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("expected response header %q, got %q", seen, got)
			}
			if logged != seen {
				t.Errorf("expected logging context id %q, got %q", seen, logged)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
	ctx := context.WithValue(context.Background(), RequestIDKey, 42)
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("expected empty id for wrong type, got %q", got)
	}
}

func TestRoutePattern(t *testing.T) {
	t.Parallel()

	var pattern string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return PrometheusMetrics(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			pattern = RoutePattern(req)
		})
	})
	r.Get("/api/v1/sessions/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil))

	if pattern != "/api/v1/sessions/{sessionID}" {
		t.Errorf("expected route pattern, got %q", pattern)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418 passed through, got %d", rec.Code)
	}

	if got := RoutePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != unmatchedRoute {
		t.Errorf("expected %q without chi context, got %q", unmatchedRoute, got)
	}
}

func TestPerformanceMonitor_SlidingWindow(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, 0)
	for i := int64(1); i <= 5; i++ {
		pm.RecordRequest(RequestMetrics{Route: "/r", Method: http.MethodGet, DurationMS: i * 10, StatusCode: 200})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 {
		t.Fatalf("expected 3 retained samples, got %d", len(recent))
	}
	for i, want := range []int64{30, 40, 50} {
		if recent[i].DurationMS != want {
			t.Errorf("sample %d: expected %dms, got %dms", i, want, recent[i].DurationMS)
		}
	}

	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(stats))
	}
	s := stats[0]
	if s.RequestCount != 5 {
		t.Errorf("expected lifetime count 5, got %d", s.RequestCount)
	}
	if s.MinDuration != 30 || s.MaxDuration != 50 || s.P50Duration != 40 {
		t.Errorf("expected min 30 p50 40 max 50, got %+v", s)
	}
	if s.AvgDuration != 40 {
		t.Errorf("expected avg 40, got %f", s.AvgDuration)
	}
}

func TestPerformanceMonitor_StatsOrderingAndErrors(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, 0)
	pm.RecordRequest(RequestMetrics{Route: "/a", Method: http.MethodGet, StatusCode: 500})
	pm.RecordRequest(RequestMetrics{Route: "/b", Method: http.MethodPost, StatusCode: 200})
	pm.RecordRequest(RequestMetrics{Route: "/b", Method: http.MethodPost, StatusCode: 201})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(stats))
	}
	if stats[0].Endpoint != "POST /b" {
		t.Errorf("expected busiest endpoint first, got %s", stats[0].Endpoint)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("expected 1 server error on GET /a, got %d", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, time.Nanosecond)
	handler := pm.Middleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/gone", nil))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(recent))
	}
	if recent[0].StatusCode != http.StatusNotFound || recent[0].Method != http.MethodDelete {
		t.Errorf("expected DELETE 404 sample, got %+v", recent[0])
	}
	if recent[0].Route != unmatchedRoute {
		t.Errorf("expected unmatched route outside chi, got %s", recent[0].Route)
	}
}

func TestPerformanceMonitor_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(50, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pm.RecordRequest(RequestMetrics{Route: "/c", Method: http.MethodGet, DurationMS: int64(j)})
				_ = pm.GetStats()
			}
		}()
	}
	wg.Wait()

	if got := pm.GetStats()[0].RequestCount; got != 800 {
		t.Errorf("expected 800 requests, got %d", got)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sorted []int64
		p      float64
		want   int64
	}{
		{nil, 0.5, 0},
		{[]int64{7}, 0.99, 7},
		{[]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.5, 5},
		{[]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.95, 9},
	}
	for _, tt := range tests {
		if got := percentile(tt.sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v, %v): expected %d, got %d", tt.sorted, tt.p, tt.want, got)
		}
	}
}
