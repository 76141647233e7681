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
package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facebook/hptl/clock"
)

func TestConvert(t *testing.T) {
	p, err := clock.PrecisionFromDigits(7)
	require.NoError(t, err)

	c, err := convert(p, formatUnits, "16000000001234567")
	require.NoError(t, err)
	require.Equal(t, uint64(16000000001234567), c.Units)
	require.Equal(t, clock.Timespec{Sec: 1600000000, Nsec: 123456700}, c.Timespec)
	require.Equal(t, clock.Timeval{Sec: 1600000000, Usec: 123456}, c.Timeval)
	require.Equal(t, uint64(1600000000123456700), c.EpochNanos)
	require.True(t, time.Unix(1600000000, 123456700).Equal(c.Time))

	c, err = convert(p, formatNanos, "1600000000123456789")
	require.NoError(t, err)
	require.Equal(t, uint64(16000000001234567), c.Units)

	c, err = convert(p, formatTime, "2020-09-13T12:26:40.5Z")
	require.NoError(t, err)
	require.Equal(t, uint64(16000000005000000), c.Units)
	require.Equal(t, "units: 16000000005000000\ntimespec: 1600000000.500000000\ntimeval: 1600000000.500000\nepoch ns: 1600000000500000000\ntime: 2020-09-13T12:26:40.5Z", c.String())
}

func TestConvertErrors(t *testing.T) {
	p, err := clock.PrecisionFromDigits(7)
	require.NoError(t, err)

	_, err = convert(p, formatUnits, "-1")
	require.Error(t, err)
	_, err = convert(p, formatNanos, "abc")
	require.Error(t, err)
	_, err = convert(p, formatTime, "yesterday")
	require.Error(t, err)
	_, err = convert(p, "ticks", "1")
	require.EqualError(t, err, "unsupported input format \"ticks\"")
}

func TestDiff(t *testing.T) {
	p, err := clock.PrecisionFromDigits(7)
	require.NoError(t, err)

	d, sign, err := diff(p, formatUnits, "16000000001234567", "16000000001234552")
	require.NoError(t, err)
	require.Equal(t, clock.Positive, sign)
	require.Equal(t, 1500*time.Nanosecond, d.Duration())

	d, sign, err = diff(p, formatUnits, "16000000001234552", "16000000001234567")
	require.NoError(t, err)
	require.Equal(t, clock.Negative, sign)
	require.Equal(t, 1500*time.Nanosecond, d.Duration())

	_, _, err = diff(p, formatUnits, "1", "x")
	require.Error(t, err)
}
