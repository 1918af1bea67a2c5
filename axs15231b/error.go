// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package axs15231b

import "fmt"

// ErrorCode is the sticky status of the last Begin or poll attempt.
//
// It implements error so a returned error can be matched with errors.Is.
type ErrorCode uint8

const (
	// ErrorNone means the last operation succeeded.
	ErrorNone ErrorCode = iota
	// ErrorI2CInit means the I²C bus could not be opened.
	ErrorI2CInit
	// ErrorDeviceNotFound means the presence probe was not acknowledged.
	ErrorDeviceNotFound
	// ErrorI2CCommunication means a poll transaction failed.
	ErrorI2CCommunication
	// ErrorInvalidData means the controller reported both coordinates as
	// zero.
	ErrorInvalidData
	// ErrorInvalidPin means a required pin is missing or the interrupt pin
	// could not be configured.
	ErrorInvalidPin
	// ErrorInterruptBusy means another Dev already owns the interrupt line.
	ErrorInterruptBusy
)

// String returns a fixed, human readable description of the code.
func (e ErrorCode) String() string {
	switch e {
	case ErrorNone:
		return "No error"
	case ErrorI2CInit:
		return "I2C initialization failed"
	case ErrorDeviceNotFound:
		return "Device not found on I2C bus"
	case ErrorI2CCommunication:
		return "I2C communication error"
	case ErrorInvalidData:
		return "Invalid data received"
	case ErrorInvalidPin:
		return "Invalid pin configuration"
	case ErrorInterruptBusy:
		return "Interrupt line already claimed"
	default:
		return "Unknown error"
	}
}

func (e ErrorCode) Error() string {
	return e.String()
}

// wrap returns an error matching both code and cause.
func wrap(code ErrorCode, cause error) error {
	if cause == nil {
		return fmt.Errorf("axs15231b: %w", code)
	}
	return fmt.Errorf("axs15231b: %w: %w", code, cause)
}
