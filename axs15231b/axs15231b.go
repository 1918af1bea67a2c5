// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GermanBionicSystems/touch/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the I²C address of the touch controller.
const DefaultAddress uint16 = 0x38

const (
	reportSize = 8
	// Maximum value of a 12 bit coordinate.
	rawMax = 0x0fff

	responseTimeout = 50 * time.Millisecond
	// The controller needs a moment between the read command and the
	// response.
	responseDelay = time.Millisecond
)

// cmdReadTouchpad requests the current touch report.
var cmdReadTouchpad = []byte{0xb5, 0xab, 0xa5, 0x5a, 0x00, 0x00, 0x00, 0x08}

// Rotation is the number of quarter turns between the sensor and the
// display. Values wrap modulo 4.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Addr is the 7 bit I²C address. 0 means DefaultAddress.
	Addr uint16
	// Rotation applied to every reported point.
	Rotation Rotation
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{Addr: DefaultAddress, Rotation: Rotate0}

// Calibration maps the usable sensor range onto the display range.
//
// Raw coordinates are clamped to [RealMin, RealMax]. When offset correction
// is enabled they are then rescaled to [0, IdealMax].
type Calibration struct {
	XRealMin, XRealMax, XIdealMax uint16
	YRealMin, YRealMax, YIdealMax uint16
}

// DefaultCalibration is the full 12 bit range with no rescaling.
var DefaultCalibration = Calibration{
	XRealMin: 0, XRealMax: rawMax, XIdealMax: rawMax,
	YRealMin: 0, YRealMax: rawMax, YIdealMax: rawMax,
}

// Validate returns an error if the calibration cannot produce meaningful
// coordinates.
func (c Calibration) Validate() error {
	if c.XRealMin >= c.XRealMax {
		return fmt.Errorf("axs15231b: x real range %d..%d is empty", c.XRealMin, c.XRealMax)
	}
	if c.YRealMin >= c.YRealMax {
		return fmt.Errorf("axs15231b: y real range %d..%d is empty", c.YRealMin, c.YRealMax)
	}
	if c.XIdealMax == 0 || c.YIdealMax == 0 {
		return errors.New("axs15231b: ideal maximum must be positive")
	}
	return nil
}

// Report is a decoded touch report.
type Report struct {
	// Gesture type, as reported by the controller firmware.
	Gesture byte
	// Fingers is the number of touch points detected.
	Fingers byte
	// Event is the 2 bit event flag of the first point.
	Event byte
	// X and Y are the raw 12 bit coordinates of the first point.
	X, Y uint16
}

func decode(b []byte) Report {
	return Report{
		Gesture: b[0],
		Fingers: b[1],
		Event:   b[2] & 0x03,
		X:       uint16(b[2]&0x0f)<<8 | uint16(b[3]),
		Y:       uint16(b[4]&0x0f)<<8 | uint16(b[5]),
	}
}

// Touch is a successfully decoded and transformed touch.
type Touch struct {
	X, Y uint16
	Raw  Report
	Time time.Time
}

// Point returns the touch position.
func (t Touch) Point() image.Point {
	return image.Point{X: int(t.X), Y: int(t.Y)}
}

// Dev is a handle to an AXS15231B touch controller.
type Dev struct {
	open BusOpener
	scl  gpio.PinIO
	sda  gpio.PinIO
	irq  gpio.PinIn
	addr uint16

	// pending is set from the edge watcher and consumed by polls.
	pending atomic.Bool
	wake    chan struct{}

	mu       sync.Mutex
	d        *i2c.Dev
	closer   io.Closer
	watch    *watcher
	buf      [reportSize]byte
	rotation Rotation
	cal      Calibration
	correct  bool
	last     Touch
	lastErr  ErrorCode

	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a Dev for the controller on the bus connected to sda and scl,
// with its INT output connected to irq.
//
// New does not touch the hardware; call Begin. A nil open uses OpenBus and
// nil opts uses DefaultOpts.
func New(open BusOpener, scl, sda gpio.PinIO, irq gpio.PinIn, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	if open == nil {
		open = OpenBus
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Dev{
		open:     open,
		scl:      scl,
		sda:      sda,
		irq:      irq,
		addr:     addr,
		wake:     make(chan struct{}, 1),
		rotation: opts.Rotation % 4,
		cal:      DefaultCalibration,
	}
}

// Begin opens the bus, checks the controller acknowledges its address and
// starts watching the interrupt line.
//
// The returned error wraps one of the ErrorCode values, which is also
// available from LastError. Begin never retries. Calling Begin again tears
// down the previous bring-up first.
func (d *Dev) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.detachLocked()

	if !configured(d.scl) || !configured(d.sda) || !configured(d.irq) {
		return d.failLocked(ErrorInvalidPin, errors.New("scl, sda and int pins are required"))
	}
	l := lineOf(d.irq)
	if err := claim(l, d); err != nil {
		return d.failLocked(ErrorInterruptBusy, err)
	}
	b, err := d.open(d.sda, d.scl)
	if err != nil {
		release(l, d)
		return d.failLocked(ErrorI2CInit, err)
	}
	var closer io.Closer
	if s, ok := b.(sharedBus); ok {
		b = s.Bus
	} else if c, ok := b.(io.Closer); ok {
		closer = c
	}
	dev := &i2c.Dev{Bus: b, Addr: d.addr}
	fail := func(code ErrorCode, err error) error {
		release(l, d)
		if closer != nil {
			_ = closer.Close()
		}
		return d.failLocked(code, err)
	}
	if err := dev.Tx(nil, nil); err != nil {
		return fail(ErrorDeviceNotFound, err)
	}
	w, err := attach(d.irq, l)
	if err != nil {
		return fail(ErrorInvalidPin, err)
	}
	d.d = dev
	d.closer = closer
	d.watch = w
	d.lastErr = ErrorNone
	return nil
}

// IsDevicePresent returns true if the controller acknowledges its address.
func (d *Dev) IsDevicePresent() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.d != nil && d.d.Tx(nil, nil) == nil
}

// Touched polls the controller if the interrupt line fired since the last
// poll, and returns true if a new valid point was decoded. Read it with
// ReadData.
//
// A poll blocks for the bus transactions plus a fixed 1ms wait between the
// command and the response.
func (d *Dev) Touched() bool {
	_, ok := d.poll()
	return ok
}

// ReadData returns the last point decoded by Touched.
func (d *Dev) ReadData() (x, y uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.X, d.last.Y
}

// Point returns the last point decoded by Touched.
func (d *Dev) Point() image.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Point()
}

// Report returns the raw report of the last point decoded by Touched.
func (d *Dev) Report() Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Raw
}

// SetRotation sets the rotation applied to subsequent points, modulo 4.
func (d *Dev) SetRotation(r Rotation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = r % 4
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() Rotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

// EnOffsetCorrection enables rescaling of the real range to the ideal range.
func (d *Dev) EnOffsetCorrection(enable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.correct = enable
}

// OffsetCorrection returns true if offset correction is enabled.
func (d *Dev) OffsetCorrection() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.correct
}

// SetOffsets sets the six calibration bounds at once. An invalid calibration
// is rejected and the previous one is kept.
func (d *Dev) SetOffsets(xRealMin, xRealMax, xIdealMax, yRealMin, yRealMax, yIdealMax uint16) error {
	return d.SetCalibration(Calibration{
		XRealMin: xRealMin, XRealMax: xRealMax, XIdealMax: xIdealMax,
		YRealMin: yRealMin, YRealMax: yRealMax, YIdealMax: yIdealMax,
	})
}

// SetCalibration is SetOffsets taking a Calibration.
func (d *Dev) SetCalibration(c Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cal = c
	return nil
}

// Calibration returns the current calibration.
func (d *Dev) Calibration() Calibration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// Calibrate installs a generic calibration for a 12 bit panel, 100..3900
// rescaled to 0..4095 on both axes, and enables offset correction.
//
// It does not measure anything.
func (d *Dev) Calibrate() {
	_ = d.SetOffsets(100, 3900, rawMax, 100, 3900, rawMax)
	d.EnOffsetCorrection(true)
}

// LastError returns the status of the last Begin or poll.
func (d *Dev) LastError() ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// ErrorString returns the description of LastError.
func (d *Dev) ErrorString() string {
	return d.LastError().String()
}

// TouchContinuous returns a channel receiving every touch decoded after an
// interrupt. The controller is polled as soon as an edge is seen and at
// least every interval. It is the caller's responsibility to call Halt()
// when done.
func (d *Dev) TouchContinuous(interval time.Duration) (<-chan Touch, error) {
	if interval <= 0 {
		return nil, errors.New("axs15231b: interval must be positive")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("axs15231b: TouchContinuous already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	touches := make(chan Touch)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(touches)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-d.wake:
			case <-t.C:
			}
			touch, ok := d.poll()
			if !ok {
				continue
			}
			select {
			case <-stop:
				return
			case touches <- touch:
			}
		}
	}()
	return touches, nil
}

// Halt stops TouchContinuous. It implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	d.wg.Wait()
	return nil
}

// Close halts the device, releases the interrupt line and closes the bus if
// it was opened by Begin.
func (d *Dev) Close() error {
	err := d.Halt()
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(err, d.detachLocked())
}

func (d *Dev) String() string {
	return fmt.Sprintf("AXS15231B{%#x, INT=%s}", d.addr, d.irq)
}

// interrupt runs in the edge watcher. It must not block nor touch the bus.
func (d *Dev) interrupt() {
	d.pending.Store(true)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// poll consumes the pending flag and, if it was set, reads and transforms a
// report.
func (d *Dev) poll() (Touch, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending.Swap(false) {
		return Touch{}, false
	}
	if d.d == nil {
		d.lastErr = ErrorI2CCommunication
		return Touch{}, false
	}
	if t, ok := d.d.Bus.(Timeouter); ok {
		if err := t.SetTimeout(responseTimeout); err != nil {
			d.lastErr = ErrorI2CCommunication
			return Touch{}, false
		}
	}
	if err := d.d.Tx(cmdReadTouchpad, nil); err != nil {
		d.lastErr = ErrorI2CCommunication
		return Touch{}, false
	}
	sleep(responseDelay)
	// Tx either fills the whole buffer or fails.
	if err := d.d.Tx(nil, d.buf[:]); err != nil {
		d.lastErr = ErrorI2CCommunication
		return Touch{}, false
	}
	r := decode(d.buf[:])
	if r.X == 0 && r.Y == 0 {
		d.lastErr = ErrorInvalidData
		return Touch{}, false
	}
	x, y := transform(r.X, r.Y, d.cal, d.correct, d.rotation)
	d.last = Touch{X: x, Y: y, Raw: r, Time: time.Now()}
	d.lastErr = ErrorNone
	return d.last, true
}

// transform clamps, optionally rescales, and rotates a raw point.
func transform(rawX, rawY uint16, c Calibration, correct bool, r Rotation) (uint16, uint16) {
	x := common.Constrain(int(rawX), int(c.XRealMin), int(c.XRealMax))
	y := common.Constrain(int(rawY), int(c.YRealMin), int(c.YRealMax))
	xMax, yMax := int(c.XRealMax), int(c.YRealMax)
	if correct {
		x = common.Map(x, int(c.XRealMin), int(c.XRealMax), 0, int(c.XIdealMax))
		y = common.Map(y, int(c.YRealMin), int(c.YRealMax), 0, int(c.YIdealMax))
		xMax, yMax = int(c.XIdealMax), int(c.YIdealMax)
	}
	x, y = rotate(r, x, y, xMax, yMax)
	return uint16(x), uint16(y)
}

func rotate(r Rotation, x, y, xMax, yMax int) (int, int) {
	switch r {
	case Rotate0:
		return x, y
	case Rotate90:
		return y, xMax - x
	case Rotate180:
		return xMax - x, yMax - y
	case Rotate270:
		return yMax - y, x
	default:
		return x, y
	}
}

func (d *Dev) failLocked(code ErrorCode, cause error) error {
	d.lastErr = code
	return wrap(code, cause)
}

// detachLocked undoes Begin.
func (d *Dev) detachLocked() error {
	var err error
	if d.watch != nil {
		err = d.watch.detach()
		d.watch = nil
	}
	if configured(d.irq) {
		release(lineOf(d.irq), d)
	}
	if d.closer != nil {
		err = errors.Join(err, d.closer.Close())
		d.closer = nil
	}
	d.d = nil
	return err
}

func configured(p gpio.PinIn) bool {
	return p != nil && p != gpio.INVALID
}

var sleep = time.Sleep

var _ conn.Resource = &Dev{}
