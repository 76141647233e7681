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
	"container/ring"
	"math"
	"sync"
)

// state of the daemon, guarded by mutex
type daemonState struct {
	sync.Mutex

	dataPoints  *ring.Ring // offsets we measured before each sync
	adjustments *ring.Ring // frequency adjustments done by calibration

	lastBoundNS  uint64
	lastDriftPPB float64
}

func newDaemonState(ringSize int) *daemonState {
	s := &daemonState{
		dataPoints:  ring.New(ringSize),
		adjustments: ring.New(ringSize),
	}
	// init ring buffers with nils
	for i := 0; i < ringSize; i++ {
		s.dataPoints.Value = nil
		s.dataPoints = s.dataPoints.Next()

		s.adjustments.Value = nil
		s.adjustments = s.adjustments.Next()
	}
	return s
}

func (s *daemonState) updateResults(boundNS uint64, driftPPB float64) {
	s.Lock()
	defer s.Unlock()
	s.lastBoundNS = boundNS
	s.lastDriftPPB = driftPPB
}

func (s *daemonState) results() (uint64, float64) {
	s.Lock()
	defer s.Unlock()
	return s.lastBoundNS, s.lastDriftPPB
}

func (s *daemonState) pushDataPoint(data *DataPoint) {
	s.Lock()
	defer s.Unlock()
	s.dataPoints.Value = data
	s.dataPoints = s.dataPoints.Next()
}

// takeDataPoint returns up to n latest data points, newest first
func (s *daemonState) takeDataPoint(n int) []*DataPoint {
	s.Lock()
	defer s.Unlock()
	result := []*DataPoint{}
	r := s.dataPoints.Prev()
	for j := 0; j < n; j++ {
		if r.Value == nil {
			break
		}
		result = append(result, r.Value.(*DataPoint))
		r = r.Prev()
	}
	return result
}

func (s *daemonState) aggregateDataPointsMax(n int) *DataPoint {
	s.Lock()
	defer s.Unlock()
	d := &DataPoint{}
	r := s.dataPoints.Prev()
	for j := 0; j < n; j++ {
		if r.Value == nil {
			break
		}
		dp := r.Value.(*DataPoint)
		if math.Abs(dp.OffsetNS) > d.OffsetNS {
			d.OffsetNS = math.Abs(dp.OffsetNS)
		}
		if dp.ElapsedNS > d.ElapsedNS {
			d.ElapsedNS = dp.ElapsedNS
		}
		r = r.Prev()
	}
	return d
}

func (s *daemonState) pushAdjustment(hz float64) {
	s.Lock()
	defer s.Unlock()
	s.adjustments.Value = hz
	s.adjustments = s.adjustments.Next()
}

// takeAdjustment returns up to n latest adjustments, newest first
func (s *daemonState) takeAdjustment(n int) []float64 {
	s.Lock()
	defer s.Unlock()
	result := []float64{}
	r := s.adjustments.Prev()
	for j := 0; j < n; j++ {
		if r.Value == nil {
			break
		}
		result = append(result, r.Value.(float64))
		r = r.Prev()
	}
	return result
}
