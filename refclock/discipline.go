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
	"time"
)

// PPBToTimexPPM is what we use to conver PPB to PPM.
// man clock_adjtime(2):
// In struct timex, freq, ppsfreq, and stabil are ppm (parts per million) with a 16-bit fractional part.
// To covert value where 2^16=65536 is 1 ppm to ppb or back, we need this multiplier
const PPBToTimexPPM = 65.536

// clock states from usr/include/linux/timex.h
const (
	StateOK    = 0
	StateIns   = 1
	StateDel   = 2
	StateOOP   = 3
	StateWait  = 4
	StateError = 5
)

// Discipline is what the kernel reports about a clock it disciplines
type Discipline struct {
	FreqPPB  float64
	MaxError time.Duration
	EstError time.Duration
	State    int
}

// Synchronized tells if the kernel considers the clock synchronized
func (d *Discipline) Synchronized() bool {
	return d.State != StateError
}

// StateString returns human-readable clock state
func (d *Discipline) StateString() string {
	switch d.State {
	case StateOK:
		return "TIME_OK"
	case StateIns:
		return "TIME_INS"
	case StateDel:
		return "TIME_DEL"
	case StateOOP:
		return "TIME_OOP"
	case StateWait:
		return "TIME_WAIT"
	case StateError:
		return "TIME_ERROR"
	}
	return "UNSUPPORTED"
}
