// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the linear remapping of a raw sensor count into a display range.
package common

// Map re-maps x from the range [inMin, inMax] to the range [outMin, outMax].
//
// The division truncates toward zero, matching the integer map() found in
// most microcontroller SDKs, so the end points map exactly. x is not
// constrained; use Constrain first when the output must stay in range.
//
// inMin must differ from inMax.
func Map(x, inMin, inMax, outMin, outMax int) int {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Constrain returns x clamped to [lo, hi].
func Constrain(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
