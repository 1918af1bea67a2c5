// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sink mirrors touch events to other systems: a serial line for a
// logic analyzer or a second board, and an MQTT broker for dashboards.
package sink

import (
	"errors"
	"time"

	"github.com/GermanBionicSystems/touch/axs15231b"
)

// Sink receives touches.
type Sink interface {
	Send(t axs15231b.Touch) error
	Close() error
}

// Message is the structured form of a touch published by the sinks.
type Message struct {
	X       uint16    `json:"x" cbor:"x"`
	Y       uint16    `json:"y" cbor:"y"`
	RawX    uint16    `json:"raw_x" cbor:"raw_x"`
	RawY    uint16    `json:"raw_y" cbor:"raw_y"`
	Fingers uint8     `json:"fingers" cbor:"fingers"`
	Gesture uint8     `json:"gesture" cbor:"gesture"`
	Time    time.Time `json:"time" cbor:"time"`
}

// NewMessage converts a touch.
func NewMessage(t axs15231b.Touch) Message {
	return Message{
		X:       t.X,
		Y:       t.Y,
		RawX:    t.Raw.X,
		RawY:    t.Raw.Y,
		Fingers: t.Raw.Fingers,
		Gesture: t.Raw.Gesture,
		Time:    t.Time,
	}
}

// Multi returns a Sink sending to all of s. Errors are joined; a failing sink
// does not prevent the others from receiving the touch.
func Multi(s ...Sink) Sink {
	return multi(s)
}

type multi []Sink

func (m multi) Send(t axs15231b.Touch) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
