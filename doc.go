// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touch is a container for the AXS15231B capacitive touch panel
// driver and the tooling used to bring it up and calibrate it.
//
// The driver lives in package axs15231b. The remaining packages visualise or
// forward the touches it reports.
package touch
