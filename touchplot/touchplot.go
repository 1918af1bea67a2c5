// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touchplot renders a trace of touch points to an image.
//
// The trace is drawn at panel resolution on a light grid, with a stroke
// between consecutive points and the coordinates of the last point written
// next to it. It is handy to eyeball calibration: a straight swipe along an
// edge should land on the edge.
package touchplot

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Opts represents the options available for a Plot.
type Opts struct {
	// Grid is the spacing of grid lines in pixels. 0 disables the grid.
	Grid int
	// Radius of the dot drawn at each point.
	Radius float64
	// FontSize of the coordinate label, in points.
	FontSize float64
	// Max is the maximum number of points kept. Older points are dropped.
	// 0 means no limit.
	Max int

	Background, GridColor, Stroke, Dot color.Color
}

// DefaultOpts is used when nil is passed to New.
var DefaultOpts = Opts{
	Grid:       40,
	Radius:     3,
	FontSize:   12,
	Max:        4096,
	Background: color.White,
	GridColor:  color.Gray{Y: 0xe0},
	Stroke:     color.NRGBA{0x30, 0x60, 0xc0, 0xff},
	Dot:        color.NRGBA{0xd0, 0x20, 0x20, 0xff},
}

// Plot accumulates touch points.
type Plot struct {
	w, h int
	opts Opts
	face font.Face

	mu  sync.Mutex
	pts []image.Point
}

// New returns a Plot of the given size in pixels.
func New(w, h int, opts *Opts) (*Plot, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("touchplot: invalid size %dx%d", w, h)
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("touchplot: %w", err)
	}
	p := &Plot{w: w, h: h, opts: *opts}
	if p.opts.FontSize > 0 {
		p.face = truetype.NewFace(f, &truetype.Options{Size: p.opts.FontSize})
	}
	return p, nil
}

// Add appends a point to the trace.
func (p *Plot) Add(pt image.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pts = append(p.pts, pt)
	if p.opts.Max > 0 && len(p.pts) > p.opts.Max {
		p.pts = append(p.pts[:0], p.pts[len(p.pts)-p.opts.Max:]...)
	}
}

// Len returns the number of points in the trace.
func (p *Plot) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pts)
}

// Reset drops all the points.
func (p *Plot) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pts = p.pts[:0]
}

// Image renders the trace.
func (p *Plot) Image() image.Image {
	return p.render().Image()
}

// EncodePNG writes the rendered trace as PNG.
func (p *Plot) EncodePNG(w io.Writer) error {
	return p.render().EncodePNG(w)
}

// SavePNG writes the rendered trace as PNG to path.
func (p *Plot) SavePNG(path string) error {
	return p.render().SavePNG(path)
}

func (p *Plot) render() *gg.Context {
	p.mu.Lock()
	pts := append([]image.Point(nil), p.pts...)
	p.mu.Unlock()

	dc := gg.NewContext(p.w, p.h)
	dc.SetColor(p.opts.Background)
	dc.Clear()

	if g := p.opts.Grid; g > 0 {
		dc.SetColor(p.opts.GridColor)
		dc.SetLineWidth(1)
		for x := g; x < p.w; x += g {
			dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(p.h))
		}
		for y := g; y < p.h; y += g {
			dc.DrawLine(0, float64(y)+0.5, float64(p.w), float64(y)+0.5)
		}
		dc.Stroke()
	}
	if len(pts) == 0 {
		return dc
	}

	dc.SetColor(p.opts.Stroke)
	dc.SetLineWidth(2)
	dc.MoveTo(float64(pts[0].X), float64(pts[0].Y))
	for _, pt := range pts[1:] {
		dc.LineTo(float64(pt.X), float64(pt.Y))
	}
	dc.Stroke()

	dc.SetColor(p.opts.Dot)
	for _, pt := range pts {
		dc.DrawCircle(float64(pt.X), float64(pt.Y), p.opts.Radius)
	}
	dc.Fill()

	if p.face != nil {
		last := pts[len(pts)-1]
		dc.SetFontFace(p.face)
		label := fmt.Sprintf("%d,%d", last.X, last.Y)
		// Keep the label inside the image.
		ax, ay := 0.0, 1.0
		if last.X > p.w/2 {
			ax = 1
		}
		if last.Y < p.h/4 {
			ay = 0
		}
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(label, float64(last.X)+(0.5-ax)*16, float64(last.Y)+(0.5-ay)*16, ax, ay)
	}
	return dc
}
