// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package touchcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/touch/axs15231b"
	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3/i2c"
)

const profile = `
# Waveshare 3.5" on a Raspberry Pi
bus      "1"
scl      GPIO3
sda      GPIO2
int      "GPIO 17"   # quoted names keep their spaces
addr     0x3b
rotation 5
width    320
height   480
x_range  12 4000
y_range  0x1e 4070
offset_correction off
`

func TestParse(t *testing.T) {
	c := qt.New(t)
	cfg, err := Parse(strings.NewReader(profile))
	c.Assert(err, qt.IsNil)
	c.Assert(*cfg, qt.DeepEquals, Config{
		Bus:              "1",
		SCL:              "GPIO3",
		SDA:              "GPIO2",
		INT:              "GPIO 17",
		Addr:             i2c.Addr(0x3b),
		Rotation:         axs15231b.Rotate90,
		Width:            320,
		Height:           480,
		XMin:             12,
		XMax:             4000,
		YMin:             30,
		YMax:             4070,
		OffsetCorrection: false,
	})
	c.Assert(cfg.Calibration(), qt.Equals, axs15231b.Calibration{
		XRealMin: 12, XRealMax: 4000, XIdealMax: 319,
		YRealMin: 30, YRealMax: 4070, YIdealMax: 479,
	})
	c.Assert(*cfg.Opts(), qt.Equals, axs15231b.Opts{Addr: 0x3b, Rotation: axs15231b.Rotate90})
}

func TestParseEmpty(t *testing.T) {
	c := qt.New(t)
	cfg, err := Parse(strings.NewReader("\n# nothing\n\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(*cfg, qt.DeepEquals, Default())
	c.Assert(cfg.Calibration().XIdealMax, qt.Equals, uint16(319))
	c.Assert(cfg.Calibration().YIdealMax, qt.Equals, uint16(479))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in  string
		err string
	}{
		{in: "colour red", err: `touchcfg: line 1: colour: unknown setting`},
		{in: "\nwidth", err: `touchcfg: line 2: width: wrong number of values`},
		{in: "width wide", err: `touchcfg: line 1: width: .*invalid syntax`},
		{in: "addr 0x80", err: `touchcfg: line 1: addr: 0x80 is not a 7 bit address`},
		{in: "addr zz", err: `touchcfg: line 1: addr: invalid i2c address`},
		{in: "x_range 10", err: `touchcfg: line 1: x_range: wrong number of values`},
		{in: "x_range 10 5000", err: `touchcfg: line 1: x_range: .*out of range`},
		{in: "y_range 400 300", err: `touchcfg: axs15231b: y real range 400..300 is empty`},
		{in: "width 1", err: `touchcfg: invalid panel size 1x480`},
		{in: "offset_correction maybe", err: `touchcfg: line 1: offset_correction: expected on or off, got "maybe"`},
		{in: `scl "GPIO3`, err: `touchcfg: line 1: .*`},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			_, err := Parse(strings.NewReader(test.in))
			qt.New(t).Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestLoad(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "board.conf")
	c.Assert(os.WriteFile(path, []byte("rotation 3\nwidth 240\n"), 0o644), qt.IsNil)
	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Rotation, qt.Equals, axs15231b.Rotate270)
	c.Assert(cfg.Width, qt.Equals, 240)
	c.Assert(cfg.Height, qt.Equals, 480)

	c.Assert(os.WriteFile(path, []byte("bogus 1\n"), 0o644), qt.IsNil)
	_, err = Load(path)
	c.Assert(err, qt.ErrorMatches, `touchcfg: line 1: bogus: unknown setting \(in .*board.conf\)`)

	_, err = Load(filepath.Join(c.TempDir(), "missing.conf"))
	c.Assert(err, qt.ErrorMatches, `touchcfg: open .*`)
}
