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
package daemon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSample0 = &LogSample{
	OffsetNS:        1.1,
	OffsetMeanNS:    1.2,
	OffsetStddevNS:  1.3,
	ElapsedNS:       1.4,
	DriftPPB:        1.5,
	DriftMeanPPB:    1.6,
	DriftStddevPPB:  1.7,
	FrequencyHz:     2400000000,
	AdjustmentHz:    -2,
	BoundNS:         2.3,
	CalculatedDrift: 25.1,
}

var testSample1 = &LogSample{
	OffsetNS:        0.1,
	OffsetMeanNS:    0.2,
	OffsetStddevNS:  0.3,
	ElapsedNS:       0.4,
	DriftPPB:        0.5,
	DriftMeanPPB:    0.6,
	DriftStddevPPB:  0.7,
	FrequencyHz:     2400000001,
	AdjustmentHz:    1,
	BoundNS:         1.3,
	CalculatedDrift: 100.1,
}

func TestShouldLog(t *testing.T) {
	require.False(t, shouldLog(0))
	require.True(t, shouldLog(1))
}

func TestLogSample_CSVRecords(t *testing.T) {
	got := testSample0.CSVRecords()
	want := []string{"1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "2400000000", "-2", "2.3", "25.1"}

	// make sure we are in sync with header
	require.Equal(t, len(header), len(got))

	require.Equal(t, want, got)
}

func TestCSVLogger_Log(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewCSVLogger(b, 1)

	err := l.Log(testSample0)
	require.NoError(t, err)
	err = l.Log(testSample1)
	require.NoError(t, err)
	err = l.Log(testSample0)
	require.NoError(t, err)

	got := b.String()
	want := `offset,offset_mean,offset_stddev,elapsed,drift,drift_mean,drift_stddev,freq,adjustment,bound,calculated_drift
1.1,1.2,1.3,1.4,1.5,1.6,1.7,2400000000,-2,2.3,25.1
0.1,0.2,0.3,0.4,0.5,0.6,0.7,2400000001,1,1.3,100.1
1.1,1.2,1.3,1.4,1.5,1.6,1.7,2400000000,-2,2.3,25.1
`

	require.Equal(t, want, got)
}

func TestCSVLogger_Disabled(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewCSVLogger(b, 0)
	require.NoError(t, l.Log(testSample0))
	require.Empty(t, b.String())
}

func TestDummyLogger_Log(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewDummyLogger(b)
	require.NoError(t, l.Log(&LogSample{OffsetNS: -1500, BoundNS: 2000000}))
	require.Equal(t, "offset = -1.5µs, bound = 2ms\n", b.String())
}
