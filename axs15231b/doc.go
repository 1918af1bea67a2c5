// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package axs15231b drives the capacitive touch controller embedded in the
// AXS15231B display driver IC over I²C.
//
// The controller pulls its INT line low when a new report is ready. The
// driver watches that line for falling edges and only talks to the bus when
// an edge was seen since the last poll, so calling Touched() from a render
// loop is cheap.
//
// Raw 12 bit coordinates are clamped to the calibrated sensor range,
// optionally rescaled to the display range and rotated to match the display
// orientation. A report with both coordinates at zero is treated as noise,
// which means a genuine touch at the raw origin is never reported.
//
// # Calibration
//
// The calibration is a precondition of meaningful coordinates: each axis
// needs RealMin < RealMax. SetOffsets refuses anything else.
//
// # Pins
//
// SCL, SDA and INT are all required. A nil pin or gpio.INVALID means the pin
// is not configured and Begin fails with ErrorInvalidPin.
package axs15231b
