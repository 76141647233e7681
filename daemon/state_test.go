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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDaemonStateDataPoints(t *testing.T) {
	s := newDaemonState(3)
	require.Empty(t, s.takeDataPoint(3))

	for i := 1; i <= 4; i++ {
		s.pushDataPoint(&DataPoint{ReferenceNS: int64(i), OffsetNS: float64(-i * 10), ElapsedNS: float64(i)})
	}
	got := s.takeDataPoint(3)
	require.Len(t, got, 3)
	// newest first, oldest overwritten
	require.Equal(t, int64(4), got[0].ReferenceNS)
	require.Equal(t, int64(3), got[1].ReferenceNS)
	require.Equal(t, int64(2), got[2].ReferenceNS)
	require.Len(t, s.takeDataPoint(2), 2)

	maxDp := s.aggregateDataPointsMax(3)
	require.Equal(t, 40.0, maxDp.OffsetNS)
	require.Equal(t, 4.0, maxDp.ElapsedNS)
}

func TestDaemonStateAdjustments(t *testing.T) {
	s := newDaemonState(2)
	require.Empty(t, s.takeAdjustment(2))
	s.pushAdjustment(-3)
	require.Equal(t, []float64{-3}, s.takeAdjustment(2))
	s.pushAdjustment(5)
	s.pushAdjustment(1)
	require.Equal(t, []float64{1, 5}, s.takeAdjustment(2))
}

func TestDaemonStateResults(t *testing.T) {
	s := newDaemonState(1)
	bound, drift := s.results()
	require.Zero(t, bound)
	require.Zero(t, drift)
	s.updateResults(42, -1.5)
	bound, drift = s.results()
	require.Equal(t, uint64(42), bound)
	require.Equal(t, -1.5, drift)
}
