// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// axs15231b streams touches from an AXS15231B touch controller.
//
// Touches are logged, and optionally mirrored to a serial port, an MQTT
// broker, a live terminal view and a PNG trace written on exit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/touch/axs15231b"
	"github.com/GermanBionicSystems/touch/sink"
	"github.com/GermanBionicSystems/touch/touchcfg"
	"github.com/GermanBionicSystems/touch/touchplot"
	"github.com/GermanBionicSystems/touch/touchview"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	config := flag.String("config", "", "board profile; defaults to the reference board")
	busName := flag.String("bus", "", "I²C bus name; empty looks the bus up by its pins")
	scl := flag.String("scl", "", "SCL pin name")
	sda := flag.String("sda", "", "SDA pin name")
	intPin := flag.String("int", "", "INT pin name")
	addr := flag.String("addr", "", "I²C address")
	rotation := flag.Int("rotation", 0, "rotation in quarter turns")
	calibrate := flag.Bool("calibrate", false, "use the generic 100..3900 calibration instead of the profile's")
	interval := flag.Duration("interval", 50*time.Millisecond, "maximum time between polls")
	view := flag.Bool("view", false, "draw touches in the terminal")
	pngPath := flag.String("png", "", "write a PNG trace of the touches on exit")
	serialPort := flag.String("serial", "", "mirror touches to this serial port")
	baud := flag.Int("baud", 115200, "serial port speed")
	broker := flag.String("mqtt", "", "publish touches to this MQTT broker, e.g. tcp://localhost:1883")
	topic := flag.String("topic", "axs15231b/touch", "MQTT topic")
	format := flag.String("format", "json", "MQTT payload format: json or cbor")
	d := flag.Duration("d", 0, "run duration; 0 runs until interrupted")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := touchcfg.Default()
	if *config != "" {
		c, err := touchcfg.Load(*config)
		if err != nil {
			return err
		}
		cfg = *c
	}
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			cfg.Bus = *busName
		case "scl":
			cfg.SCL = *scl
		case "sda":
			cfg.SDA = *sda
		case "int":
			cfg.INT = *intPin
		case "addr":
			if e := cfg.Addr.Set(*addr); e != nil {
				err = fmt.Errorf("-addr: %w", e)
			}
		case "rotation":
			cfg.Rotation = axs15231b.Rotation(*rotation % 4)
		}
	})
	if err != nil {
		return err
	}
	mqttFormat, err := sink.ParseFormat(*format)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	var open axs15231b.BusOpener
	if cfg.Bus != "" {
		open = axs15231b.OpenBusByName(cfg.Bus)
	}
	dev := axs15231b.New(open, gpioreg.ByName(cfg.SCL), gpioreg.ByName(cfg.SDA), gpioreg.ByName(cfg.INT), cfg.Opts())
	if err := dev.Begin(); err != nil {
		return fmt.Errorf("%s: %w", dev, err)
	}
	defer dev.Close()
	log.Printf("%s ready", dev)

	if *calibrate {
		dev.Calibrate()
	} else {
		if err := dev.SetCalibration(cfg.Calibration()); err != nil {
			return err
		}
		dev.EnOffsetCorrection(cfg.OffsetCorrection)
	}

	panel := outputSize(dev.Calibration(), dev.OffsetCorrection(), dev.Rotation())
	log.Printf("output range %dx%d", panel.X, panel.Y)

	var sinks []sink.Sink
	if *serialPort != "" {
		s, err := sink.OpenSerial(*serialPort, *baud)
		if err != nil {
			return err
		}
		sinks = append(sinks, s)
	}
	if *broker != "" {
		m, err := sink.DialMQTT(*broker, fmt.Sprintf("axs15231b-%d", os.Getpid()), *topic, mqttFormat)
		if err != nil {
			return err
		}
		sinks = append(sinks, m)
	}
	out := sink.Multi(sinks...)
	defer out.Close()

	var tv *touchview.Dev
	if *view {
		if tv, err = touchview.New(&touchview.Opts{W: 40, H: max(1, 40*panel.Y/panel.X/2), Panel: panel}); err != nil {
			return err
		}
		defer tv.Halt()
	}
	var plot *touchplot.Plot
	if *pngPath != "" {
		if plot, err = touchplot.New(panel.X, panel.Y, nil); err != nil {
			return err
		}
	}

	touches, err := dev.TouchContinuous(*interval)
	if err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	var timeout <-chan time.Time
	if *d > 0 {
		timeout = time.After(*d)
	}
	n := 0
loop:
	for {
		select {
		case t, ok := <-touches:
			if !ok {
				break loop
			}
			n++
			log.Printf("touch %d,%d raw %d,%d fingers=%d", t.X, t.Y, t.Raw.X, t.Raw.Y, t.Raw.Fingers)
			if !*view {
				fmt.Printf("%d,%d\n", t.X, t.Y)
			}
			if err := out.Send(t); err != nil {
				log.Printf("%v", err)
			}
			if tv != nil {
				if err := tv.Mark(t.Point()); err != nil {
					return err
				}
			}
			if plot != nil {
				plot.Add(t.Point())
			}
		case <-sig:
			break loop
		case <-timeout:
			break loop
		}
	}
	if err := dev.Halt(); err != nil {
		return err
	}
	log.Printf("%d touches, last status: %s", n, dev.ErrorString())
	if plot != nil {
		if err := plot.SavePNG(*pngPath); err != nil {
			return err
		}
	}
	return nil
}

// outputSize returns the size of the coordinate space the driver reports
// points in.
func outputSize(c axs15231b.Calibration, correct bool, r axs15231b.Rotation) image.Point {
	p := image.Point{X: int(c.XRealMax) + 1, Y: int(c.YRealMax) + 1}
	if correct {
		p = image.Point{X: int(c.XIdealMax) + 1, Y: int(c.YIdealMax) + 1}
	}
	// The panel is seen sideways at odd rotations.
	if r%2 == 1 {
		p.X, p.Y = p.Y, p.X
	}
	return p
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "axs15231b: %s.\n", err)
		os.Exit(1)
	}
}
