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
	"context"
	"fmt"
	"math/bits"
	"time"

	log "github.com/sirupsen/logrus"
)

// how many times calibration starts over because its sample was unusable
const maxCalibrationRestarts = 3

// Calibration is the outcome of a single calibration run
type Calibration struct {
	AdjustmentHz  int64    // applied to frequency
	FrequencyHz   uint64   // frequency after adjustment
	Residual      Timespec // remaining error against the reference
	Sign          Sign     // whether clock is ahead (+) or behind (-) the reference
	ElapsedCycles uint64   // cycles since anchor the sample was taken at
	Steps         int      // frequencies tried
	Restarts      int      // restarts due to overflow
}

// sample is a cycle delta scaled to units, taken at the same moment as reference time
type sample struct {
	anchor    *Anchor
	scaled    uint64
	cycles    uint64
	reference Timespec
	precision Precision
}

// at returns error against reference if clock was running at hz
func (s *sample) at(hz uint64) (Timespec, Sign) {
	return AbsDifference(s.precision.ToTimespec(s.scaled/hz+s.anchor.Units), s.reference)
}

// Calibrate refines cycle counter frequency against the reference clock and returns applied adjustment in Hz.
// extraDelayUnits compensates constant latency between reading the counter and the reference,
// such as the cost of reading the reference clock itself.
func (c *Clock) Calibrate(ctx context.Context, extraDelayUnits int64) (int64, error) {
	r, err := c.CalibrateReport(ctx, extraDelayUnits)
	if err != nil {
		return 0, err
	}
	return r.AdjustmentHz, nil
}

// CalibrateReport is Calibrate returning details of the run
func (c *Clock) CalibrateReport(ctx context.Context, extraDelayUnits int64) (*Calibration, error) {
	s, restarts, err := c.takeSample(ctx, extraDelayUnits)
	if err != nil {
		return nil, err
	}
	hz := s.anchor.FrequencyHz
	adj, residual, sign, steps := search(s, hz, c.cfg.NoiseFloor, c.cfg.MaxCalibrationSteps)
	newHz := uint64(int64(hz) + adj)
	if adj != 0 {
		c.setFrequency(newHz)
	}
	r := &Calibration{
		AdjustmentHz:  adj,
		FrequencyHz:   newHz,
		Residual:      residual,
		Sign:          sign,
		ElapsedCycles: s.cycles,
		Steps:         steps,
		Restarts:      restarts,
	}
	log.Debugf("calibration: adjustment: %d Hz, frequency: %d Hz, residual: %s%v, steps: %d", adj, newHz, sign, residual, steps)
	return r, nil
}

// takeSample waits for cycles to accumulate and reads the counter against the reference.
// A sample whose delta overflows is thrown away and the clock re-anchored.
func (c *Clock) takeSample(ctx context.Context, extraDelayUnits int64) (*sample, int, error) {
	extra := time.Duration(extraDelayUnits * int64(c.precision.ResolutionNanos()))
	var err error
	for restarts := 0; restarts <= maxCalibrationRestarts; restarts++ {
		a := c.anchor.Load()
		if err := c.src.Sleep(ctx, c.cfg.CalibrationWait); err != nil {
			return nil, restarts, err
		}
		delta := c.src.Cycles.Cycles() - a.Cycles
		hi, scaled := bits.Mul64(delta, uint64(c.precision))
		if hi != 0 {
			c.overflows.Add(1)
			log.Warningf("calibration: cycle delta %d overflows, re-anchoring", delta)
			if err := c.Sync(); err != nil {
				return nil, restarts, err
			}
			err = ErrCounterOverflow
			continue
		}
		ref, rerr := c.src.Realtime.Now()
		if rerr != nil {
			return nil, restarts, fmt.Errorf("%w: %w", ErrReferenceClockUnavailable, rerr)
		}
		if c.anchor.Load() != a {
			log.Debugf("calibration: clock re-anchored during the wait, starting over")
			err = ErrAnchorMoved
			continue
		}
		return &sample{
			anchor:    a,
			scaled:    scaled,
			cycles:    delta,
			reference: TimespecFromTime(ref.Add(extra)),
			precision: c.precision,
		}, restarts, nil
	}
	return nil, maxCalibrationRestarts, err
}

// step walks frequency from hz in direction dir while error doesn't grow and is above the floor.
// It returns the first adjustment with the smallest error seen.
func step(s *sample, hz uint64, dir int64, floor Timespec, limit int) (int64, Timespec, Sign, int) {
	best := int64(0)
	bestErr, bestSign := s.at(hz)
	prev := bestErr
	steps := 0
	for adj := dir; steps < limit && floor.Before(prev); adj += dir {
		cand := int64(hz) + adj
		if cand <= 0 {
			break
		}
		steps++
		e, sign := s.at(uint64(cand))
		if prev.Before(e) {
			break
		}
		if e.Before(bestErr) {
			best, bestErr, bestSign = adj, e, sign
		}
		prev = e
	}
	return best, bestErr, bestSign, steps
}

// search runs the hill-climb up and then down from hz and picks the better direction
func search(s *sample, hz uint64, noiseFloor time.Duration, limit int) (int64, Timespec, Sign, int) {
	floor := TimespecFromDuration(noiseFloor)
	up, upErr, upSign, upSteps := step(s, hz, 1, floor, limit)
	if up != 0 {
		return up, upErr, upSign, upSteps
	}
	down, downErr, downSign, downSteps := step(s, hz, -1, floor, limit)
	return down, downErr, downSign, upSteps + downSteps
}
