// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// BusOpener returns the I²C bus wired to the given data and clock pins.
//
// It is called by Begin. If the returned bus implements io.Closer, Close on
// the Dev closes it.
type BusOpener func(sda, scl gpio.PinIO) (i2c.Bus, error)

// Timeouter is implemented by buses that support a per transaction timeout.
//
// Begin leaves the bus timeout alone; every poll sets it to 50ms before
// talking to the controller.
type Timeouter interface {
	SetTimeout(d time.Duration) error
}

// OpenBus is the default BusOpener. It walks the buses registered in i2creg
// and returns the first one whose SDA and SCL pins match.
//
// host.Init() must have been called.
func OpenBus(sda, scl gpio.PinIO) (i2c.Bus, error) {
	refs := i2creg.All()
	if len(refs) == 0 {
		return nil, errors.New("no I²C bus registered; did you forget to call host.Init()?")
	}
	for _, ref := range refs {
		b, err := ref.Open()
		if err != nil {
			continue
		}
		if p, ok := b.(i2c.Pins); ok && samePin(p.SDA(), sda) && samePin(p.SCL(), scl) {
			return b, nil
		}
		_ = b.Close()
	}
	return nil, fmt.Errorf("no I²C bus on SDA=%s SCL=%s", sda, scl)
}

// OpenBusByName returns a BusOpener that opens the named bus through i2creg.
//
// If the bus reports its pins, they must match the ones given to New.
func OpenBusByName(name string) BusOpener {
	return func(sda, scl gpio.PinIO) (i2c.Bus, error) {
		b, err := i2creg.Open(name)
		if err != nil {
			return nil, err
		}
		if p, ok := b.(i2c.Pins); ok && knownPin(p.SDA()) && knownPin(p.SCL()) {
			if !samePin(p.SDA(), sda) || !samePin(p.SCL(), scl) {
				_ = b.Close()
				return nil, fmt.Errorf("bus %s uses SDA=%s SCL=%s, not SDA=%s SCL=%s", b, p.SDA(), p.SCL(), sda, scl)
			}
		}
		return b, nil
	}
}

// UseBus returns a BusOpener handing out a bus the application already
// opened. Close on the Dev leaves it open.
func UseBus(b i2c.Bus) BusOpener {
	return func(sda, scl gpio.PinIO) (i2c.Bus, error) {
		if b == nil {
			return nil, errors.New("nil bus")
		}
		return sharedBus{b}, nil
	}
}

// sharedBus marks a bus the Dev does not own.
type sharedBus struct {
	i2c.Bus
}

func knownPin(p gpio.PinIO) bool {
	return p != nil && p != gpio.INVALID
}

func samePin(a, b gpio.PinIO) bool {
	if !knownPin(a) || !knownPin(b) {
		return false
	}
	if r, ok := a.(gpio.RealPin); ok {
		a = r.Real()
	}
	if r, ok := b.(gpio.RealPin); ok {
		b = r.Real()
	}
	return a.Name() == b.Name() && a.Number() == b.Number()
}
