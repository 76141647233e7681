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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	testCases := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{"precision", func(c *Config) { c.PrecisionDigits = 12 }, "invalid precision: 12 digits, max is 9"},
		{"wait", func(c *Config) { c.CalibrationWait = 0 }, "bad config: 'calibrationwait' must be positive"},
		{"floor", func(c *Config) { c.NoiseFloor = -time.Nanosecond }, "bad config: 'noisefloor' must be non-negative"},
		{"steps", func(c *Config) { c.MaxCalibrationSteps = 0 }, "bad config: 'maxcalibrationsteps' must be >0"},
		{"resync", func(c *Config) { c.OverflowResync = "never" }, "bad config: unsupported 'overflowresync' \"never\""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.modify(c)
			require.EqualError(t, c.Validate(), tc.err)
		})
	}
}
