/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package refclock

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
)

// ErrUnsupported is returned when the clock can't be read on this platform
var ErrUnsupported = fmt.Errorf("clock is not supported on this platform")

// Clock is a trusted source of time
type Clock interface {
	Now() (time.Time, error)
}

// Func allows using an ordinary function as a Clock
type Func func() (time.Time, error)

// Now implements Clock
func (f Func) Now() (time.Time, error) {
	return f()
}

// Realtime is the system wall clock
type Realtime struct{}

// MonotonicRaw is the hardware-based monotonic clock, free from NTP adjustments
type MonotonicRaw struct{}

// NominalCPUHz returns frequency advertised by the first CPU, in Hz.
// It's the base frequency on most systems and doesn't have to match the cycle counter.
func NominalCPUHz() (uint64, error) {
	info, err := cpu.Info()
	if err != nil {
		return 0, fmt.Errorf("reading cpu info: %w", err)
	}
	if len(info) == 0 || info[0].Mhz <= 0 {
		return 0, fmt.Errorf("cpu frequency is not reported")
	}
	return uint64(info[0].Mhz * 1e6), nil
}
