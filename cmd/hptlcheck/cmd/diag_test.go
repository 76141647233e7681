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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/refclock"
)

func TestCheckAgainstThreshold(t *testing.T) {
	tests := []struct {
		testName      string
		name          string
		value         time.Duration
		warnThreshold time.Duration
		failThreshold time.Duration
		explanation   string
		failOnZero    bool
		wantStatus    status
		wantMsg       string
	}{
		{
			testName:      "below threshold",
			name:          "Calibration residual",
			value:         time.Microsecond,
			warnThreshold: 10 * time.Microsecond,
			failThreshold: time.Millisecond,
			explanation:   "Residual is how far calibrated clock is from the reference clock",
			wantStatus:    OK,
			wantMsg:       "Calibration residual is 1µs, we expect it to be within 10µs",
		},
		{
			testName:      "warn threshold",
			name:          "Calibration residual",
			value:         20 * time.Microsecond,
			warnThreshold: 10 * time.Microsecond,
			failThreshold: time.Millisecond,
			explanation:   "Residual is how far calibrated clock is from the reference clock",
			wantStatus:    WARN,
			wantMsg:       "Calibration residual is 20µs, we expect it to be within 10µs. Residual is how far calibrated clock is from the reference clock",
		},
		{
			testName:      "fail threshold",
			name:          "Calibration residual",
			value:         2 * time.Millisecond,
			warnThreshold: 10 * time.Microsecond,
			failThreshold: time.Millisecond,
			explanation:   "Residual is how far calibrated clock is from the reference clock",
			wantStatus:    FAIL,
			wantMsg:       "Calibration residual is 2ms, we expect it to be within 10µs. Residual is how far calibrated clock is from the reference clock",
		},
		{
			testName:      "fail on zero",
			name:          "Reference clock max error",
			value:         0,
			warnThreshold: 100 * time.Millisecond,
			failThreshold: time.Second,
			explanation:   "oh no",
			failOnZero:    true,
			wantStatus:    FAIL,
			wantMsg:       "Reference clock max error is 0s, we expect it to be non-zero and within 100ms. oh no",
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			var (
				st  status
				msg string
			)
			if tt.failOnZero {
				st, msg = checkAgainstThresholdNonZero(tt.name, tt.value, tt.warnThreshold, tt.failThreshold, tt.explanation)
			} else {
				st, msg = checkAgainstThreshold(tt.name, tt.value, tt.warnThreshold, tt.failThreshold, tt.explanation)
			}
			require.Equal(t, tt.wantStatus, st)
			require.Equal(t, tt.wantMsg, msg)
		})
	}

	// check with float now just to exercise generics
	t.Run("floats", func(t *testing.T) {
		st, msg := checkAgainstThreshold("some float", 3.14, 4.0, 10.1, "oh no")
		require.Equal(t, OK, st)
		require.Equal(t, "some float is 3.14, we expect it to be within 4", msg)
	})
}

func TestCheckAboveThreshold(t *testing.T) {
	st, msg := checkAboveThreshold("some int", 28, 10, 5, "oh no")
	require.Equal(t, OK, st)
	require.Equal(t, "some int is 28, we expect it to be at least 10", msg)

	st, msg = checkAboveThreshold("some int", 8, 10, 5, "oh no")
	require.Equal(t, WARN, st)
	require.Equal(t, "some int is 8, we expect it to be at least 10. oh no", msg)

	st, msg = checkAboveThreshold("some int", 4, 10, 5, "oh no")
	require.Equal(t, FAIL, st)
	require.Equal(t, "some int is 4, we expect it to be at least 10. oh no", msg)
}

func TestCheckReferenceSynchronized(t *testing.T) {
	r := &diagResult{Discipline: &refclock.Discipline{State: refclock.StateOK}}
	st, msg := checkReferenceSynchronized(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Reference clock is synchronized, state is TIME_OK", msg)

	r.Discipline.State = refclock.StateError
	st, msg = checkReferenceSynchronized(r)
	require.Equal(t, FAIL, st)
	require.Equal(t, "Reference clock is not synchronized, state is TIME_ERROR", msg)

	r.DisciplineErr = fmt.Errorf("nope")
	st, msg = checkReferenceSynchronized(r)
	require.Equal(t, WARN, st)
	require.Equal(t, "Reference clock state is unknown: nope", msg)

	st, _ = checkReferenceMaxError(r)
	require.Equal(t, WARN, st)
}

func TestCheckReferenceMaxError(t *testing.T) {
	r := &diagResult{Discipline: &refclock.Discipline{MaxError: 16 * time.Millisecond}}
	st, msg := checkReferenceMaxError(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Reference clock max error is 16ms, we expect it to be within 100ms", msg)

	r.Discipline.MaxError = 16 * time.Second
	st, _ = checkReferenceMaxError(r)
	require.Equal(t, FAIL, st)
}

func TestCheckDiscovery(t *testing.T) {
	r := &diagResult{Discovery: &clock.Discovery{FrequencyHz: 2000000000}}
	st, msg := checkDiscovery(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Frequency was discovered against monotonic reference clock: 2000000000 Hz", msg)

	r.Discovery.Degraded = true
	st, _ = checkDiscovery(r)
	require.Equal(t, WARN, st)
}

func TestCheckNominalFrequency(t *testing.T) {
	r := &diagResult{Discovery: &clock.Discovery{FrequencyHz: 2000000000}}
	st, msg := checkNominalFrequency(r)
	require.Equal(t, WARN, st)
	require.Equal(t, "No nominal CPU frequency available", msg)

	r.NominalHz = 2000000000
	st, msg = checkNominalFrequency(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Deviation (%) of discovered frequency from nominal CPU frequency is 0, we expect it to be within 5", msg)

	r.NominalHz = 1600000000
	st, msg = checkNominalFrequency(r)
	require.Equal(t, WARN, st)
	require.Equal(t, "Deviation (%) of discovered frequency from nominal CPU frequency is 25, we expect it to be within 5. Counter frequency far from nominal CPU frequency may mean it's not invariant", msg)
}

func TestCheckCalibration(t *testing.T) {
	r := &diagResult{
		Calibration: &clock.Calibration{
			AdjustmentHz: -200,
			FrequencyHz:  2000000000,
			Residual:     clock.Timespec{Nsec: 100},
		},
	}
	st, msg := checkCalibrationResidual(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Calibration residual is 100ns, we expect it to be within 10µs", msg)

	st, msg = checkCalibrationAdjustment(r)
	require.Equal(t, OK, st)
	require.Equal(t, "Calibration adjustment (PPM) is 0.1, we expect it to be within 100", msg)

	r.Calibration.AdjustmentHz = 4000000
	st, _ = checkCalibrationAdjustment(r)
	require.Equal(t, FAIL, st)
}

func TestCheckAnchorSpan(t *testing.T) {
	r := &diagResult{AnchorSpan: 6149 * time.Millisecond, SyncInterval: time.Second}
	st, msg := checkAnchorSpan(r)
	require.Equal(t, WARN, st)
	require.Equal(t, "Time before cycle delta overflows is 6.149s, we expect it to be at least 10s. Clock must be re-anchored before counter delta overflows", msg)

	r.AnchorSpan = time.Hour
	st, _ = checkAnchorSpan(r)
	require.Equal(t, OK, st)

	r.AnchorSpan = time.Millisecond
	st, _ = checkAnchorSpan(r)
	require.Equal(t, FAIL, st)
}

func TestRunDiagnosers(t *testing.T) {
	r := &diagResult{
		Discipline:  &refclock.Discipline{State: refclock.StateError, MaxError: 16 * time.Second},
		Discovery:   &clock.Discovery{FrequencyHz: 2000000000},
		NominalHz:   2000000000,
		Calibration: &clock.Calibration{FrequencyHz: 2000000000},
		AnchorSpan:  time.Hour,

		SyncInterval: time.Second,
	}
	require.Equal(t, 2, runDiagnosers(r, diagnosers))
}
