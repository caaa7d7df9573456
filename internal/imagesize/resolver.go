// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package imagesize

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/decorum/internal/cache"
	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
)

// Config controls remote fetching and caching.
type Config struct {
	// FetchTimeout bounds a single remote fetch.
	FetchTimeout time.Duration

	// MaxBytes caps how much of the body the decoder may read.
	MaxBytes int64

	// CacheCapacity bounds the number of memoized URLs. Zero keeps every
	// resolved URL for the life of the process.
	CacheCapacity int

	// UserAgent is sent with every fetch.
	UserAgent string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:  10 * time.Second,
		MaxBytes:      8 << 20,
		CacheCapacity: 0,
		UserAgent:     "decorum-imagesize/1.0",
	}
}

var (
	errStatus      = errors.New("unexpected status")
	errUnsupported = errors.New("unsupported url scheme")
)

// Resolver resolves and memoizes natural image sizes.
type Resolver struct {
	cfg    Config
	client *http.Client
	sizes  *cache.LRU[geometry.Size]
	group  singleflight.Group
	logger zerolog.Logger

	fetches atomic.Int64
}

// NewResolver creates a Resolver. A nil client uses a client with the
// configured fetch timeout.
func NewResolver(cfg Config, client *http.Client) *Resolver {
	def := DefaultConfig()
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}

	return &Resolver{
		cfg:    cfg,
		client: client,
		sizes:  cache.NewLRU[geometry.Size](sizeCacheCapacity(cfg.CacheCapacity), 0),
		logger: logging.WithComponent("imagesize"),
	}
}

func sizeCacheCapacity(n int) int {
	if n <= 0 {
		return cache.Unbounded
	}
	return n
}

// Resolve returns the natural size of the image at rawURL. An empty URL
// returns immediately with ok=false. A URL that was already resolved is
// served from the cache without a network fetch.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (geometry.Size, bool) {
	if strings.TrimSpace(rawURL) == "" {
		return geometry.Size{}, false
	}

	if size, ok := r.sizes.Get(rawURL); ok {
		metrics.RecordImageLookup(true)
		return size, true
	}
	metrics.RecordImageLookup(false)

	// The shared fetch must outlive any single caller: detach it from the
	// first caller's cancellation. fetchSize still bounds it by FetchTimeout.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(rawURL, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we waited.
		if size, ok := r.sizes.Get(rawURL); ok {
			return size, nil
		}
		size, err := r.fetch(shared, rawURL)
		if err != nil {
			return geometry.Size{}, err
		}
		r.sizes.Add(rawURL, size)
		return size, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		r.logger.Debug().
			Str("url", logging.SanitizeURL(rawURL)).
			Msg("Image size caller gone before fetch finished")
		return geometry.Size{}, false
	}
	if res.Err != nil {
		r.logger.Warn().
			Err(res.Err).
			Str("url", logging.SanitizeURL(rawURL)).
			Msg("Image size unavailable")
		return geometry.Size{}, false
	}
	return res.Val.(geometry.Size), true
}

// ResolveAsync resolves rawURL on a new goroutine and hands the result to
// done. An empty URL calls done synchronously with ok=false and schedules
// no work.
func (r *Resolver) ResolveAsync(ctx context.Context, rawURL string, done func(geometry.Size, bool)) {
	if strings.TrimSpace(rawURL) == "" {
		done(geometry.Size{}, false)
		return
	}
	go func() {
		size, ok := r.Resolve(ctx, rawURL)
		done(size, ok)
	}()
}

// Cached returns a memoized size without fetching.
func (r *Resolver) Cached(rawURL string) (geometry.Size, bool) {
	if !r.sizes.Contains(rawURL) {
		return geometry.Size{}, false
	}
	return r.sizes.Get(rawURL)
}

// Fetches returns how many fetches have been issued.
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

// Stats returns the size cache statistics.
func (r *Resolver) Stats() cache.Stats {
	return r.sizes.Stats()
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) (geometry.Size, error) {
	r.fetches.Add(1)
	start := time.Now()

	size, reason, err := r.fetchSize(ctx, rawURL)
	metrics.RecordImageFetch(time.Since(start), reason)
	return size, err
}

func (r *Resolver) fetchSize(ctx context.Context, rawURL string) (geometry.Size, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	body, reason, err := r.open(ctx, rawURL)
	if err != nil {
		return geometry.Size{}, reason, err
	}
	defer body.Close()

	size, err := decodeSize(body)
	if err != nil {
		return geometry.Size{}, "decode", err
	}
	return size, "", nil
}

// Decode fetches and fully decodes the image at rawURL. Decoded pixels are
// not cached; the natural size learned on the way is.
func (r *Resolver) Decode(ctx context.Context, rawURL string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	r.fetches.Add(1)
	start := time.Now()
	body, reason, err := r.open(ctx, rawURL)
	if err != nil {
		metrics.RecordImageFetch(time.Since(start), reason)
		return nil, err
	}
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		metrics.RecordImageFetch(time.Since(start), "decode")
		return nil, fmt.Errorf("decode image: %w", err)
	}
	metrics.RecordImageFetch(time.Since(start), "")

	b := img.Bounds()
	if b.Dx() > 0 && b.Dy() > 0 {
		r.sizes.Add(rawURL, geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	}
	return img, nil
}

// open returns a size-limited body for rawURL. On failure the string is the
// metrics reason label.
func (r *Resolver) open(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		body, err := decodeDataURL(rawURL)
		if err != nil {
			return nil, "data_url", err
		}
		return io.NopCloser(bytes.NewReader(body)), "", nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "scheme", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "scheme", fmt.Errorf("%w: %q", errUnsupported, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, "request", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "network", fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "status", fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}
	return limitedBody{Reader: io.LimitReader(resp.Body, r.cfg.MaxBytes), Closer: resp.Body}, "", nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func decodeSize(rd io.Reader) (geometry.Size, error) {
	cfg, _, err := image.DecodeConfig(rd)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return geometry.Size{}, fmt.Errorf("decode image header: empty image %dx%d", cfg.Width, cfg.Height)
	}
	return geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// decodeDataURL extracts the payload of a base64 data: URL.
func decodeDataURL(raw string) ([]byte, error) {
	comma := strings.IndexByte(raw, ',')
	if comma < 0 {
		return nil, errors.New("malformed data url")
	}
	meta, payload := raw[len("data:"):comma], raw[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data url is not base64 encoded")
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return body, nil
}
