// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// edgeWait bounds each WaitForEdge call so a watcher can be stopped on pin
// drivers where Halt does not interrupt a pending wait.
const edgeWait = 100 * time.Millisecond

// line identifies a hardware interrupt line.
type line struct {
	name   string
	number int
}

func lineOf(p gpio.PinIn) line {
	if r, ok := p.(gpio.RealPin); ok {
		p = r.Real()
	}
	return line{name: p.Name(), number: p.Number()}
}

func (l line) String() string {
	return fmt.Sprintf("%s(%d)", l.name, l.number)
}

// lines is the dispatch table from interrupt line to the Dev owning it.
var lines = struct {
	sync.Mutex
	owners map[line]*Dev
}{owners: map[line]*Dev{}}

// claim registers d as the owner of l. A line owned by another Dev is never
// taken over.
func claim(l line, d *Dev) error {
	lines.Lock()
	defer lines.Unlock()
	if owner, ok := lines.owners[l]; ok && owner != d {
		return fmt.Errorf("line %s is owned by %s", l, owner.String())
	}
	lines.owners[l] = d
	return nil
}

// release unregisters d from l. It does nothing if d is not the owner.
func release(l line, d *Dev) {
	lines.Lock()
	defer lines.Unlock()
	if lines.owners[l] == d {
		delete(lines.owners, l)
	}
}

// dispatch forwards an edge on l to its owner, if any.
func dispatch(l line) {
	lines.Lock()
	d := lines.owners[l]
	lines.Unlock()
	if d != nil {
		d.interrupt()
	}
}

// watcher turns falling edges on an input pin into dispatch calls.
type watcher struct {
	pin  gpio.PinIn
	stop chan struct{}
	done chan struct{}
}

// attach configures p as a pulled-up input with falling edge detection and
// starts watching it.
func attach(p gpio.PinIn, l line) (*watcher, error) {
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, err
	}
	w := &watcher{pin: p, stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for {
			select {
			case <-w.stop:
				return
			default:
			}
			if p.WaitForEdge(edgeWait) {
				dispatch(l)
			}
		}
	}()
	return w, nil
}

// detach stops the watcher and disables edge detection on the pin.
func (w *watcher) detach() error {
	close(w.stop)
	// Unblocks WaitForEdge on drivers supporting it.
	_ = w.pin.Halt()
	<-w.done
	return w.pin.In(gpio.PullUp, gpio.NoEdge)
}
