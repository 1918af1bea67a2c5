// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touchview implements a 2D display.Drawer that outputs to terminal
// (stdout) using ANSI color codes, with helpers to visualize touch points.
//
// Useful to check rotation and calibration without a display attached.
package touchview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/touch/common"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this view.
type Opts struct {
	// W and H are the grid size in terminal cells.
	W, H int
	// Panel is the size of the touch panel in pixels, used to scale points
	// to cells. Empty means points are cell coordinates.
	Panel image.Point
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Out defaults to a colorable stdout.
	Out io.Writer

	_ struct{}
}

// Colors used by Mark.
var (
	Latest = color.NRGBA{255, 255, 255, 255}
	Trail  = color.NRGBA{0, 255, 96, 255}
)

// Dev is a touch panel emulator that outputs to the console.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	size    image.Point
	panel   image.Point
	palette ansi256.Palette

	pixels []byte
	// heat of each cell marked by Mark, 0 when unmarked.
	heat  []uint8
	drawn bool
	buf   bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("touchview: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	n := opts.W * opts.H
	return &Dev{
		w:       w,
		size:    image.Point{X: opts.W, Y: opts.H},
		panel:   opts.Panel,
		palette: *p,
		pixels:  make([]byte, 3*n),
		heat:    make([]uint8, n),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("TouchView{%dx%d}", d.size.X, d.size.Y)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so it is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Cell returns the grid cell covering panel point p. Points outside the
// panel are clamped to the edge.
func (d *Dev) Cell(p image.Point) image.Point {
	if d.panel.X > 0 && d.panel.Y > 0 {
		p.X = common.Map(p.X, 0, d.panel.X, 0, d.size.X)
		p.Y = common.Map(p.Y, 0, d.panel.Y, 0, d.size.Y)
	}
	return image.Point{
		X: common.Constrain(p.X, 0, d.size.X-1),
		Y: common.Constrain(p.Y, 0, d.size.Y-1),
	}
}

// Mark highlights the cell under p. Cells marked earlier fade out.
func (d *Dev) Mark(p image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.Cell(p)
	i := c.Y*d.size.X + c.X
	for j, h := range d.heat {
		if h == 0 {
			continue
		}
		d.heat[j] = h - h/4 - 1
		d.setPixel(j, scale(Trail, d.heat[j]))
	}
	d.heat[i] = 255
	d.setPixel(i, Latest)
	_, err := d.refresh()
	return err
}

// Clear blanks the grid.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.pixels {
		d.pixels[i] = 0
	}
	for i := range d.heat {
		d.heat[i] = 0
	}
	_, err := d.refresh()
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("touchview: invalid RGB stream length")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: d.size}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r = r.Intersect(d.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := image.Point{X: x - r.Min.X + sp.X, Y: y - r.Min.Y + sp.Y}
			if !s.In(src.Bounds()) {
				continue
			}
			d.setPixel(y*d.size.X+x, src.At(s.X, s.Y))
		}
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) setPixel(i int, c color.Color) {
	r16, g16, b16, _ := c.RGBA()
	d.pixels[3*i] = byte(r16 >> 8)
	d.pixels[3*i+1] = byte(g16 >> 8)
	d.pixels[3*i+2] = byte(b16 >> 8)
}

func (d *Dev) refresh() (int, error) {
	d.buf.Reset()
	if d.drawn {
		// Move back to the top left corner of the grid.
		fmt.Fprintf(&d.buf, "\033[%dA", d.size.Y)
	}
	for y := 0; y < d.size.Y; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := 0; x < d.size.X; x++ {
			i := 3 * (y*d.size.X + x)
			c := color.NRGBA{d.pixels[i], d.pixels[i+1], d.pixels[i+2], 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

func scale(c color.NRGBA, heat uint8) color.NRGBA {
	return color.NRGBA{
		R: uint8(uint16(c.R) * uint16(heat) / 255),
		G: uint8(uint16(c.G) * uint16(heat) / 255),
		B: uint8(uint16(c.B) * uint16(heat) / 255),
		A: 255,
	}
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
