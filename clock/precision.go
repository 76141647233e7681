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
package clock

import (
	"fmt"
	"time"
)

// MaxPrecisionDigits is the finest precision we support, nanoseconds
const MaxPrecisionDigits = 9

const nanosPerSecond = uint64(time.Second)

// Precision is the fixed-point scale: number of time units in a second.
// It's a power of ten between 1 and 1e9, so it always divides a second in nanoseconds evenly.
type Precision uint64

// PrecisionFromDigits returns Precision with given number of sub-second digits
func PrecisionFromDigits(digits uint) (Precision, error) {
	if digits > MaxPrecisionDigits {
		return 0, fmt.Errorf("%w: %d digits, max is %d", ErrInvalidPrecision, digits, MaxPrecisionDigits)
	}
	p := Precision(1)
	for i := uint(0); i < digits; i++ {
		p *= 10
	}
	return p, nil
}

// Digits returns number of sub-second digits
func (p Precision) Digits() uint {
	var d uint
	for v := uint64(p); v > 1; v /= 10 {
		d++
	}
	return d
}

// ResolutionNanos returns how many nanoseconds one unit is
func (p Precision) ResolutionNanos() uint64 {
	return nanosPerSecond / uint64(p)
}

// Resolution returns one unit as time.Duration
func (p Precision) Resolution() time.Duration {
	return time.Duration(p.ResolutionNanos())
}

func (p Precision) String() string {
	return p.Resolution().String()
}

// ToTimespec splits units into seconds and nanoseconds
func (p Precision) ToTimespec(t uint64) Timespec {
	sec := t / uint64(p)
	return Timespec{
		Sec:  sec,
		Nsec: (t - sec*uint64(p)) * p.ResolutionNanos(),
	}
}

// ToTimeval splits units into seconds and microseconds
func (p Precision) ToTimeval(t uint64) Timeval {
	sec := t / uint64(p)
	return Timeval{
		Sec:  sec,
		Usec: (t - sec*uint64(p)) * 1000000 / uint64(p),
	}
}

// FromTimespec converts seconds and nanoseconds into units, truncating to resolution
func (p Precision) FromTimespec(ts Timespec) uint64 {
	return ts.Sec*uint64(p) + ts.Nsec/p.ResolutionNanos()
}

// ToEpochNanos converts units into nanoseconds
func (p Precision) ToEpochNanos(t uint64) uint64 {
	return t * p.ResolutionNanos()
}

// FromEpochNanos converts nanoseconds into units, truncating to resolution
func (p Precision) FromEpochNanos(ns uint64) uint64 {
	return ns / p.ResolutionNanos()
}

// ToTime converts units since Unix epoch into time.Time
func (p Precision) ToTime(t uint64) time.Time {
	ts := p.ToTimespec(t)
	return time.Unix(int64(ts.Sec), int64(ts.Nsec))
}

// FromTime converts time.Time into units since Unix epoch.
// Times before the epoch are not representable and become 0.
func (p Precision) FromTime(t time.Time) uint64 {
	return p.FromTimespec(TimespecFromTime(t))
}

// Timespec is time split into seconds and nanoseconds
type Timespec struct {
	Sec  uint64
	Nsec uint64
}

// TimespecFromTime converts time.Time into Timespec
func TimespecFromTime(t time.Time) Timespec {
	if t.Unix() < 0 {
		return Timespec{}
	}
	return Timespec{Sec: uint64(t.Unix()), Nsec: uint64(t.Nanosecond())}
}

// TimespecFromDuration converts non-negative interval into Timespec
func TimespecFromDuration(d time.Duration) Timespec {
	if d < 0 {
		return Timespec{}
	}
	return Timespec{Sec: uint64(d / time.Second), Nsec: uint64(d % time.Second)}
}

// Before reports whether ts is earlier than other
func (ts Timespec) Before(other Timespec) bool {
	if ts.Sec != other.Sec {
		return ts.Sec < other.Sec
	}
	return ts.Nsec < other.Nsec
}

// Duration returns Timespec as time.Duration, assuming it's an interval
func (ts Timespec) Duration() time.Duration {
	return time.Duration(ts.Sec)*time.Second + time.Duration(ts.Nsec)
}

func (ts Timespec) String() string {
	return fmt.Sprintf("%d.%09d", ts.Sec, ts.Nsec)
}

// Timeval is time split into seconds and microseconds
type Timeval struct {
	Sec  uint64
	Usec uint64
}

func (tv Timeval) String() string {
	return fmt.Sprintf("%d.%06d", tv.Sec, tv.Usec)
}

// Sign tells which way a difference goes
type Sign int8

// Possible signs of a difference
const (
	Negative Sign = -1
	Positive Sign = 1
)

func (s Sign) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// AbsDifference returns |a-b| and its sign: Positive when a is later than or equal to b.
func AbsDifference(a, b Timespec) (Timespec, Sign) {
	sign := Positive
	if a.Before(b) {
		a, b = b, a
		sign = Negative
	}
	if a.Nsec < b.Nsec {
		return Timespec{Sec: a.Sec - b.Sec - 1, Nsec: nanosPerSecond + a.Nsec - b.Nsec}, sign
	}
	return Timespec{Sec: a.Sec - b.Sec, Nsec: a.Nsec - b.Nsec}, sign
}
