// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/decorum/internal/cartouche"
	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
	"github.com/tomtom215/decorum/internal/scene"
)

// ErrInvalidPixelRatio is returned for a non-finite, negative or too large
// pixel ratio.
var ErrInvalidPixelRatio = errors.New("invalid pixel ratio")

// Fetcher decodes images by URL. *imagesize.Resolver satisfies it.
type Fetcher interface {
	Decode(ctx context.Context, url string) (image.Image, error)
}

// Config controls export output.
type Config struct {
	DefaultPixelRatio float64
	MaxPixelRatio     float64
	// FetchConcurrency bounds parallel image fetches per export.
	FetchConcurrency int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPixelRatio: 2,
		MaxPixelRatio:     4,
		FetchConcurrency:  4,
	}
}

var (
	canvasColor      = color.White
	placeholderFill  = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	placeholderEdge  = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	cartoucheColor   = color.RGBA{R: 0x1f, G: 0x1f, B: 0x1f, A: 0xff}
	placeholderWidth = 1.0
)

// Renderer draws snapshots.
type Renderer struct {
	cfg     Config
	fetcher Fetcher
	logger  zerolog.Logger

	regular *truetype.Font
	bold    *truetype.Font
}

// New parses the bundled Go fonts and returns a Renderer. A nil fetcher
// renders every image as a placeholder.
func New(cfg Config, fetcher Fetcher) (*Renderer, error) {
	def := DefaultConfig()
	if cfg.DefaultPixelRatio <= 0 {
		cfg.DefaultPixelRatio = def.DefaultPixelRatio
	}
	if cfg.MaxPixelRatio <= 0 {
		cfg.MaxPixelRatio = def.MaxPixelRatio
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = def.FetchConcurrency
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &Renderer{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logging.WithComponent("render"),
		regular: regular,
		bold:    bold,
	}, nil
}

// PixelRatio validates ratio. Zero selects the default.
func (r *Renderer) PixelRatio(ratio float64) (float64, error) {
	if ratio == 0 {
		return r.cfg.DefaultPixelRatio, nil
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 0 || ratio > r.cfg.MaxPixelRatio {
		return 0, fmt.Errorf("%w: %v (max %v)", ErrInvalidPixelRatio, ratio, r.cfg.MaxPixelRatio)
	}
	return ratio, nil
}

// Render draws snap at ratio physical pixels per logical unit.
func (r *Renderer) Render(ctx context.Context, snap *scene.Snapshot, ratio float64) (image.Image, error) {
	dc, err := r.draw(ctx, snap, ratio)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// RenderPNG renders snap and encodes it as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, snap *scene.Snapshot, ratio float64) ([]byte, error) {
	dc, err := r.draw(ctx, snap, ratio)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) draw(ctx context.Context, snap *scene.Snapshot, ratio float64) (*gg.Context, error) {
	ratio, err := r.PixelRatio(ratio)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	images, err := r.fetchAll(ctx, snap)
	if err != nil {
		return nil, err
	}

	w := int(math.Round(geometry.SceneWidth * ratio))
	h := int(math.Round(geometry.SceneHeight * ratio))
	dc := gg.NewContext(w, h)
	dc.SetColor(canvasColor)
	dc.Clear()
	dc.Scale(ratio, ratio)

	if bg := snap.Background; bg != nil {
		r.drawImage(dc, images[bg.Src], geometry.Point{X: bg.X, Y: bg.Y}, geometry.Size{Width: bg.Width, Height: bg.Height}, 0)
	}
	for i := range snap.Decorations {
		d := &snap.Decorations[i]
		r.drawImage(dc, images[d.Src], d.Center(), d.Size(), d.Rotation)
	}
	if snap.Cartouche != nil {
		r.drawCartouche(dc, snap.Cartouche, ratio)
	}

	metrics.RecordExport(time.Since(start))
	return dc, nil
}

// fetchAll decodes every distinct source URL in snap. Failed URLs map to
// nil and are drawn as placeholders.
func (r *Renderer) fetchAll(ctx context.Context, snap *scene.Snapshot) (map[string]image.Image, error) {
	var urls []string
	seen := make(map[string]bool)
	add := func(u string, failed bool) {
		if u == "" || failed || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if bg := snap.Background; bg != nil {
		add(bg.Src, bg.ImageFailed)
	}
	for i := range snap.Decorations {
		add(snap.Decorations[i].Src, snap.Decorations[i].ImageFailed)
	}

	out := make(map[string]image.Image, len(urls))
	if r.fetcher == nil {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.FetchConcurrency)
	for _, u := range urls {
		g.Go(func() error {
			img, err := r.fetcher.Decode(gctx, u)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn().Err(err).Str("url", logging.SanitizeURL(u)).Msg("Drawing placeholder for unavailable image")
				return nil
			}
			mu.Lock()
			out[u] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export canceled: %w", err)
	}
	return out, nil
}

// drawImage draws img centered at c, scaled to size and rotated by deg. A
// nil img draws the placeholder.
func (r *Renderer) drawImage(dc *gg.Context, img image.Image, c geometry.Point, size geometry.Size, deg float64) {
	if !size.Valid() {
		return
	}
	dc.Push()
	defer dc.Pop()

	dc.Translate(c.X, c.Y)
	if deg != 0 {
		dc.Rotate(gg.Radians(deg))
	}
	dc.Translate(-size.Width/2, -size.Height/2)

	if img == nil {
		dc.DrawRectangle(0, 0, size.Width, size.Height)
		dc.SetColor(placeholderFill)
		dc.FillPreserve()
		dc.SetColor(placeholderEdge)
		dc.SetLineWidth(placeholderWidth)
		dc.Stroke()
		return
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	dc.Scale(size.Width/float64(b.Dx()), size.Height/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
}

// drawCartouche draws text in physical pixels. gg transforms only the
// text origin, so glyphs are sized by ratio explicitly.
func (r *Renderer) drawCartouche(dc *gg.Context, o *cartouche.Overlay, ratio float64) {
	dc.Push()
	defer dc.Pop()
	dc.Identity()

	dc.SetColor(cartoucheColor)
	for _, line := range o.Lines {
		dc.SetFontFace(r.newFace(line.Field == "projectName", line.FontSize*ratio))
		// Line Y is the top of the line box.
		dc.DrawStringAnchored(line.Text, line.X*ratio, line.Y*ratio, 0, 1)
	}
}

// newFace returns a face at size pixels. Faces are not safe for concurrent
// use, so each render builds its own.
func (r *Renderer) newFace(bold bool, size float64) font.Face {
	ttf := r.regular
	if bold {
		ttf = r.bold
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
