// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/GermanBionicSystems/touch/axs15231b"
	"github.com/tarm/serial"
)

// Serial writes one text line per touch:
//
//	touch x=120 y=48 raw=1530,410 fingers=1
type Serial struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// OpenSerial opens the serial port name, e.g. /dev/ttyUSB0, at baud.
func OpenSerial(name string, baud int) (*Serial, error) {
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	return NewSerial(p), nil
}

// NewSerial returns a Serial writing to w. Close closes w.
func NewSerial(w io.WriteCloser) *Serial {
	return &Serial{w: w}
}

// Send implements Sink.
func (s *Serial) Send(t axs15231b.Touch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "touch x=%d y=%d raw=%d,%d fingers=%d\r\n", t.X, t.Y, t.Raw.X, t.Raw.Y, t.Raw.Fingers); err != nil {
		return fmt.Errorf("sink: serial: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
