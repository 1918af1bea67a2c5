// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/touch/axs15231b"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	scl := gpioreg.ByName("GPIO3")
	sda := gpioreg.ByName("GPIO2")
	irq := gpioreg.ByName("GPIO17")

	dev := axs15231b.New(nil, scl, sda, irq, &axs15231b.Opts{Rotation: axs15231b.Rotate90})
	if err := dev.Begin(); err != nil {
		log.Fatalf("touch: %v (%s)", err, dev.ErrorString())
	}
	defer dev.Close()
	// Map the usable sensor area onto a 320x480 panel.
	if err := dev.SetOffsets(30, 4000, 319, 20, 4050, 479); err != nil {
		log.Fatal(err)
	}
	dev.EnOffsetCorrection(true)

	for end := time.Now().Add(10 * time.Second); time.Now().Before(end); {
		if dev.Touched() {
			x, y := dev.ReadData()
			fmt.Printf("touch at %d,%d\n", x, y)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func ExampleDev_TouchContinuous() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	dev := axs15231b.New(axs15231b.OpenBusByName("1"), gpioreg.ByName("GPIO3"), gpioreg.ByName("GPIO2"), gpioreg.ByName("GPIO17"), nil)
	if err := dev.Begin(); err != nil {
		log.Fatal(err)
	}
	defer dev.Close()

	ch, err := dev.TouchContinuous(20 * time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}
	time.AfterFunc(10*time.Second, func() {
		_ = dev.Halt()
	})
	for t := range ch {
		fmt.Printf("%s: %v fingers=%d\n", t.Time.Format(time.StampMilli), t.Point(), t.Raw.Fingers)
	}
}
