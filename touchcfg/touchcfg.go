// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touchcfg reads board profiles describing how a touch panel is
// wired and calibrated.
//
// A profile is a text file with one setting per line:
//
//	# Waveshare 3.5" on a Raspberry Pi
//	bus      1
//	scl      GPIO3
//	sda      GPIO2
//	int      GPIO17
//	addr     0x38
//	rotation 1
//	width    320
//	height   480
//	x_range  12 4000
//	y_range  30 4070
//	offset_correction on
//
// Values are split like a shell would, so names containing spaces can be
// quoted. Everything after an unquoted # is a comment.
package touchcfg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/GermanBionicSystems/touch/axs15231b"
	"github.com/google/shlex"
	"periph.io/x/conn/v3/i2c"
)

// Config is a board profile.
type Config struct {
	// Bus is the i2creg name of the bus. Empty means lookup by pins.
	Bus string
	// SCL, SDA and INT are gpioreg pin names.
	SCL, SDA, INT string
	Addr          i2c.Addr
	Rotation      axs15231b.Rotation
	// Width and Height are the panel resolution in pixels.
	Width, Height int
	// XMin, XMax, YMin and YMax are the raw sensor readings at the panel
	// edges.
	XMin, XMax       uint16
	YMin, YMax       uint16
	OffsetCorrection bool
}

// Default returns the profile of the reference board: a 320x480 panel on
// the default address using the full raw range.
func Default() Config {
	return Config{
		SCL:              "GPIO3",
		SDA:              "GPIO2",
		INT:              "GPIO17",
		Addr:             i2c.Addr(axs15231b.DefaultAddress),
		Rotation:         axs15231b.Rotate0,
		Width:            320,
		Height:           480,
		XMin:             0,
		XMax:             4095,
		YMin:             0,
		YMax:             4095,
		OffsetCorrection: true,
	}
}

// Calibration returns the driver calibration mapping the raw range onto the
// panel pixels.
func (c *Config) Calibration() axs15231b.Calibration {
	return axs15231b.Calibration{
		XRealMin:  c.XMin,
		XRealMax:  c.XMax,
		XIdealMax: uint16(c.Width - 1),
		YRealMin:  c.YMin,
		YRealMax:  c.YMax,
		YIdealMax: uint16(c.Height - 1),
	}
}

// Opts returns the driver options.
func (c *Config) Opts() *axs15231b.Opts {
	return &axs15231b.Opts{Addr: uint16(c.Addr), Rotation: c.Rotation}
}

// Validate checks the profile is usable.
func (c *Config) Validate() error {
	if c.Width < 2 || c.Width > 0x10000 || c.Height < 2 || c.Height > 0x10000 {
		return fmt.Errorf("touchcfg: invalid panel size %dx%d", c.Width, c.Height)
	}
	if err := c.Calibration().Validate(); err != nil {
		return fmt.Errorf("touchcfg: %w", err)
	}
	return nil
}

// Load reads the profile at path, starting from Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("touchcfg: %w", err)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return c, nil
}

// Parse reads a profile, starting from Default. The result is validated.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		words, err := shlex.Split(s.Text())
		if err != nil {
			return nil, fmt.Errorf("touchcfg: line %d: %w", n, err)
		}
		if len(words) == 0 {
			continue
		}
		if err := c.set(words[0], words[1:]); err != nil {
			return nil, fmt.Errorf("touchcfg: line %d: %s: %w", n, words[0], err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("touchcfg: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var errArgs = errors.New("wrong number of values")

func (c *Config) set(key string, v []string) error {
	switch key {
	case "bus", "scl", "sda", "int":
		if len(v) != 1 {
			return errArgs
		}
		switch key {
		case "bus":
			c.Bus = v[0]
		case "scl":
			c.SCL = v[0]
		case "sda":
			c.SDA = v[0]
		default:
			c.INT = v[0]
		}
	case "addr":
		if len(v) != 1 {
			return errArgs
		}
		if err := c.Addr.Set(v[0]); err != nil {
			return err
		}
		if c.Addr > 0x7f {
			return fmt.Errorf("%s is not a 7 bit address", c.Addr)
		}
	case "rotation":
		if len(v) != 1 {
			return errArgs
		}
		r, err := strconv.ParseUint(v[0], 10, 8)
		if err != nil {
			return err
		}
		c.Rotation = axs15231b.Rotation(r % 4)
	case "width", "height":
		if len(v) != 1 {
			return errArgs
		}
		i, err := strconv.Atoi(v[0])
		if err != nil {
			return err
		}
		if key == "width" {
			c.Width = i
		} else {
			c.Height = i
		}
	case "x_range", "y_range":
		if len(v) != 2 {
			return errArgs
		}
		lo, err := parseRaw(v[0])
		if err != nil {
			return err
		}
		hi, err := parseRaw(v[1])
		if err != nil {
			return err
		}
		if key == "x_range" {
			c.XMin, c.XMax = lo, hi
		} else {
			c.YMin, c.YMax = lo, hi
		}
	case "offset_correction":
		if len(v) != 1 {
			return errArgs
		}
		switch v[0] {
		case "on", "true", "1":
			c.OffsetCorrection = true
		case "off", "false", "0":
			c.OffsetCorrection = false
		default:
			return fmt.Errorf("expected on or off, got %q", v[0])
		}
	default:
		return errors.New("unknown setting")
	}
	return nil
}

func parseRaw(s string) (uint16, error) {
	u, err := strconv.ParseUint(s, 0, 12)
	if err != nil {
		return 0, err
	}
	return uint16(u), nil
}
