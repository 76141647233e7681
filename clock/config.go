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

// OverflowResync is how the clock re-anchors when the cycle delta overflows
type OverflowResync string

// Supported re-anchoring strategies
const (
	// ResyncReference re-anchors against the wall clock, like Sync does
	ResyncReference OverflowResync = "reference"
	// ResyncContinuous re-anchors against the clock itself, like Rebase does
	ResyncContinuous OverflowResync = "continuous"
)

// defaults
const (
	DefaultPrecisionDigits     = 7
	DefaultCalibrationWait     = 750 * time.Millisecond
	DefaultNoiseFloor          = 128 * time.Nanosecond
	DefaultMaxCalibrationSteps = 1 << 24
)

// Config represents configuration of the Clock
type Config struct {
	PrecisionDigits     uint           // digits of sub-second resolution, 0..9
	FrequencyHz         uint64         // cycle counter frequency, 0 means discover it
	CalibrateOnStart    bool           // calibrate discovered frequency right away
	CalibrationWait     time.Duration  // how long calibration accumulates cycles
	NoiseFloor          time.Duration  // calibration stops once error is below it
	MaxCalibrationSteps int            // limit of frequency steps per calibration search phase
	OverflowResync      OverflowResync // re-anchoring strategy on overflow
}

// DefaultConfig returns Config with default values
func DefaultConfig() *Config {
	return &Config{
		PrecisionDigits:     DefaultPrecisionDigits,
		CalibrateOnStart:    true,
		CalibrationWait:     DefaultCalibrationWait,
		NoiseFloor:          DefaultNoiseFloor,
		MaxCalibrationSteps: DefaultMaxCalibrationSteps,
		OverflowResync:      ResyncReference,
	}
}

// Validate makes sure config is valid
func (c *Config) Validate() error {
	if c.PrecisionDigits > MaxPrecisionDigits {
		return fmt.Errorf("%w: %d digits, max is %d", ErrInvalidPrecision, c.PrecisionDigits, MaxPrecisionDigits)
	}
	if c.CalibrationWait <= 0 {
		return fmt.Errorf("bad config: 'calibrationwait' must be positive")
	}
	if c.NoiseFloor < 0 {
		return fmt.Errorf("bad config: 'noisefloor' must be non-negative")
	}
	if c.MaxCalibrationSteps <= 0 {
		return fmt.Errorf("bad config: 'maxcalibrationsteps' must be >0")
	}
	switch c.OverflowResync {
	case ResyncReference, ResyncContinuous:
	default:
		return fmt.Errorf("bad config: unsupported 'overflowresync' %q", c.OverflowResync)
	}
	return nil
}
