// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestMap(t *testing.T) {
	var tests = []struct {
		x, inMin, inMax, outMin, outMax int
		result                          int
	}{
		{x: 100, inMin: 100, inMax: 3900, outMin: 0, outMax: 4095, result: 0},
		{x: 3900, inMin: 100, inMax: 3900, outMin: 0, outMax: 4095, result: 4095},
		{x: 2000, inMin: 100, inMax: 3900, outMin: 0, outMax: 4095, result: 2047},
		{x: 2000, inMin: 0, inMax: 4095, outMin: 0, outMax: 319, result: 155},
		// Inverted output range.
		{x: 0, inMin: 0, inMax: 10, outMin: 10, outMax: 0, result: 10},
		{x: 10, inMin: 0, inMax: 10, outMin: 10, outMax: 0, result: 0},
	}
	for _, test := range tests {
		res := Map(test.x, test.inMin, test.inMax, test.outMin, test.outMax)
		if res != test.result {
			t.Errorf("Map(%d, %d, %d, %d, %d)!=%d received %d", test.x, test.inMin, test.inMax, test.outMin, test.outMax, test.result, res)
		}
	}
}

func TestConstrain(t *testing.T) {
	var tests = []struct {
		x, lo, hi int
		result    int
	}{
		{x: 50, lo: 100, hi: 3900, result: 100},
		{x: 4000, lo: 100, hi: 3900, result: 3900},
		{x: 100, lo: 100, hi: 3900, result: 100},
		{x: 1234, lo: 100, hi: 3900, result: 1234},
	}
	for _, test := range tests {
		res := Constrain(test.x, test.lo, test.hi)
		if res != test.result {
			t.Errorf("Constrain(%d, %d, %d)!=%d received %d", test.x, test.lo, test.hi, test.result, res)
		}
	}
}
