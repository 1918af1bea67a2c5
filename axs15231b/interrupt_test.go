// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b

import (
	"sync"
	"sync/atomic"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestPendingPingPong(t *testing.T) {
	d := New(nil, nil, nil, nil, nil)
	const n = 10000
	set := make(chan struct{})
	seen := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			d.interrupt()
			set <- struct{}{}
			<-seen
		}
	}()
	for i := 0; i < n; i++ {
		<-set
		if !d.pending.Swap(false) {
			t.Fatalf("iteration %d: edge lost", i)
		}
		if d.pending.Load() {
			t.Fatalf("iteration %d: flag still set after consume", i)
		}
		seen <- struct{}{}
	}
}

func TestPendingStorm(t *testing.T) {
	d := New(nil, nil, nil, nil, nil)
	const writers = 8
	const n = 5000
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				d.interrupt()
			}
		}()
	}
	done := make(chan struct{})
	consumed := 0
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			if d.pending.Swap(false) {
				consumed++
			}
		}
	}()
	wg.Wait()
	<-done
	// The last writer finished after any earlier consume, so either the flag
	// is still set or it was consumed at least once.
	if !d.pending.Load() && consumed == 0 {
		t.Fatal("every edge was lost")
	}
	d.pending.Store(false)
	if len(d.wake) > 1 {
		t.Fatalf("wake holds %d tokens", len(d.wake))
	}
}

func TestDispatch(t *testing.T) {
	a := New(nil, nil, nil, nil, nil)
	b := New(nil, nil, nil, nil, nil)
	la := line{name: "A", number: 1}
	lb := line{name: "B", number: 2}
	if err := claim(la, a); err != nil {
		t.Fatal(err)
	}
	defer release(la, a)
	if err := claim(lb, b); err != nil {
		t.Fatal(err)
	}
	defer release(lb, b)
	if err := claim(la, a); err != nil {
		t.Fatalf("reclaiming an owned line: %v", err)
	}
	if err := claim(la, b); err == nil {
		t.Fatal("line taken over")
	}

	dispatch(la)
	if !a.pending.Load() || b.pending.Load() {
		t.Fatalf("edge on A reached a=%t b=%t", a.pending.Load(), b.pending.Load())
	}
	a.pending.Store(false)
	dispatch(lb)
	if a.pending.Load() || !b.pending.Load() {
		t.Fatalf("edge on B reached a=%t b=%t", a.pending.Load(), b.pending.Load())
	}
	b.pending.Store(false)

	// Releasing a line not owned is a no-op.
	release(la, b)
	dispatch(la)
	if !a.pending.Load() {
		t.Fatal("release by a stranger dropped the owner")
	}
	release(la, a)
	a.pending.Store(false)
	dispatch(la)
	if a.pending.Load() {
		t.Fatal("edge dispatched to a released owner")
	}
	// Unknown lines are ignored.
	dispatch(line{name: "C", number: 3})
}

func TestDispatchDuringTouched(t *testing.T) {
	bus := &pollCounter{Playback: i2ctest.Playback{Ops: pbProbe, DontPanic: true}}
	dev := getDev(t, bus, nil)
	l := lineOf(dev.irq)
	const edges = 2000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < edges; i++ {
			dispatch(l)
		}
	}()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		// Every poll fails on the bus; only the flag handling matters.
		dev.Touched()
	}
	// The last edge of the storm is consumed by the poll following done.
	if n := bus.polls.Load(); n == 0 || n > edges {
		t.Fatalf("%d polls for %d edges", n, edges)
	}

	// Drain whatever the storm left behind.
	dev.Touched()
	before := bus.polls.Load()
	if dev.Touched() {
		t.Fatal("touch without bus")
	}
	if bus.polls.Load() != before {
		t.Fatal("flag stuck after it was consumed")
	}

	// The edge following the storm is seen by the next poll, exactly once.
	dispatch(l)
	dev.Touched()
	if got := bus.polls.Load(); got != before+1 {
		t.Fatalf("last edge lost: %d polls, expected %d", got, before+1)
	}
	if dev.LastError() != ErrorI2CCommunication {
		t.Errorf("LastError() %s", dev.LastError())
	}
	dev.Touched()
	if got := bus.polls.Load(); got != before+1 {
		t.Fatalf("last edge polled twice: %d polls", got)
	}
}

// pollCounter counts read commands sent to the controller.
type pollCounter struct {
	i2ctest.Playback
	polls atomic.Int32
}

func (b *pollCounter) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 {
		b.polls.Add(1)
	}
	return b.Playback.Tx(addr, w, r)
}
