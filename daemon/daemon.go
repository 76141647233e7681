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
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/shm"
)

// how often we collect process stats
const sysStatsInterval = time.Minute

var errNotEnoughData = fmt.Errorf("not enough data points")

// DataPoint is what we store in DataPoint ring buffer
type DataPoint struct {
	// ReferenceNS is reference time of the measurement in nanoseconds
	ReferenceNS int64
	// OffsetNS is clock time minus reference time in nanoseconds
	OffsetNS float64
	// ElapsedNS is time since the anchor clock was running from, in nanoseconds
	ElapsedNS float64
	// FrequencyHz is cycle counter frequency clock was running with
	FrequencyHz float64
}

// DriftPPB returns how fast clock drifted away from reference, in parts per billion
func (d *DataPoint) DriftPPB() float64 {
	if d.ElapsedNS == 0 {
		return 0
	}
	return d.OffsetNS * 1e9 / d.ElapsedNS
}

// SanityCheck checks datapoint for correctness
func (d *DataPoint) SanityCheck() error {
	if d.ReferenceNS <= 0 {
		return fmt.Errorf("reference time is not positive")
	}
	if d.ElapsedNS <= 0 {
		return fmt.Errorf("elapsed time is not positive")
	}
	if d.FrequencyHz == 0 {
		return fmt.Errorf("frequency is 0")
	}
	return nil
}

// HybridClock is the clock daemon keeps anchored and calibrated
type HybridClock interface {
	Read() (uint64, error)
	Sync() error
	CalibrateReport(ctx context.Context, extraDelayUnits int64) (*clock.Calibration, error)
	Anchor() clock.Anchor
	Precision() clock.Precision
	Overflows() uint64
}

// Daemon is a component of hptl that
// runs continuously,
// re-anchors the clock to the reference,
// does the math
// and populates shared memory for readers.
type Daemon struct {
	cfg       *Config
	clock     HybridClock
	reference clock.ReferenceClock
	state     *daemonState
	stats     StatsServer
	l         Logger
	sys       SysStats
}

// New creates new hptl daemon
func New(cfg *Config, c HybridClock, reference clock.ReferenceClock, stats StatsServer, l Logger) *Daemon {
	s := &Daemon{
		cfg:       cfg,
		clock:     c,
		reference: reference,
		state:     newDaemonState(cfg.RingSize),
		stats:     stats,
		l:         l,
	}
	// calculated values
	s.stats.SetCounter("bound_ns", 0)
	s.stats.SetCounter("calculated_drift_ppb", 0)
	// error counters
	s.stats.SetCounter("data_error", 0)
	s.stats.SetCounter("sync_error", 0)
	s.stats.SetCounter("processing_error", 0)
	s.stats.SetCounter("calibration_error", 0)
	s.stats.SetCounter("shm_error", 0)
	s.stats.SetCounter("data_sanity_check_error", 0)
	// measured values
	s.stats.SetCounter("offset_ns", 0)
	s.stats.SetCounter("elapsed_ns", 0)
	s.stats.SetCounter("drift_ppb", 0)
	s.stats.SetCounter("freq_hz", 0)
	s.stats.SetCounter("overflows", 0)
	// calibration results
	s.stats.SetCounter("calibration.adjustment_hz", 0)
	s.stats.SetCounter("calibration.residual_ns", 0)
	s.stats.SetCounter("calibration.steps", 0)
	// aggregated values
	s.stats.SetCounter("offset_ns.abs_max", 0)
	return s
}

// measure compares clock against the reference
func (s *Daemon) measure() (*DataPoint, error) {
	a := s.clock.Anchor()
	units, err := s.clock.Read()
	if err != nil {
		return nil, fmt.Errorf("reading clock: %w", err)
	}
	ref, err := s.reference.Now()
	if err != nil {
		return nil, fmt.Errorf("reading reference clock: %w", err)
	}
	if s.clock.Anchor() != a {
		return nil, fmt.Errorf("clock re-anchored during measurement")
	}
	p := s.clock.Precision()
	refNS := ref.UnixNano()
	return &DataPoint{
		ReferenceNS: refNS,
		OffsetNS:    float64(int64(p.ToEpochNanos(units)) - refNS),
		ElapsedNS:   float64(refNS - int64(p.ToEpochNanos(a.Units))),
		FrequencyHz: float64(a.FrequencyHz),
	}, nil
}

// calculate evaluates error bound and drift over the latest data points
func (s *Daemon) calculate() (uint64, float64, error) {
	lastN := s.state.takeDataPoint(s.cfg.RingSize)
	if len(lastN) != s.cfg.RingSize {
		return 0, 0, fmt.Errorf("%w: want %d, got %d", errNotEnoughData, s.cfg.RingSize, len(lastN))
	}
	params := prepareMathParameters(lastN, s.state.takeAdjustment(s.cfg.RingSize))
	logSample := &LogSample{
		OffsetNS:       params["offset"][0],
		OffsetMeanNS:   mean(params["offset"]),
		OffsetStddevNS: stddev(params["offset"]),
		ElapsedNS:      params["elapsed"][0],
		DriftPPB:       params["driftppb"][0],
		DriftMeanPPB:   mean(params["driftppb"]),
		DriftStddevPPB: stddev(params["driftppb"]),
		FrequencyHz:    params["freq"][0],
	}
	if len(params["adjustment"]) > 0 {
		logSample.AdjustmentHz = params["adjustment"][0]
	}
	boundRaw, err := s.cfg.Math.boundExpr.Evaluate(mapOfInterface(params))
	if err != nil {
		return 0, 0, fmt.Errorf("calculating bound: %w", err)
	}
	bound := boundRaw.(float64)
	if bound < 0 || math.IsNaN(bound) {
		return 0, 0, fmt.Errorf("bound is %v", bound)
	}
	driftRaw, err := s.cfg.Math.driftExpr.Evaluate(mapOfInterface(params))
	if err != nil {
		return 0, 0, fmt.Errorf("calculating drift: %w", err)
	}
	drift := driftRaw.(float64)
	logSample.BoundNS = bound
	logSample.CalculatedDrift = drift
	if err := s.l.Log(logSample); err != nil {
		log.Errorf("failed to log sample: %v", err)
	}
	return uint64(bound), drift, nil
}

// doWork processes data point measured before the latest sync
func (s *Daemon) doWork(data *DataPoint) error {
	// push stats
	s.stats.SetCounter("offset_ns", int64(data.OffsetNS))
	s.stats.SetCounter("elapsed_ns", int64(data.ElapsedNS))
	s.stats.SetCounter("drift_ppb", int64(data.DriftPPB()))
	s.stats.SetCounter("freq_hz", int64(data.FrequencyHz))
	s.stats.SetCounter("overflows", int64(s.clock.Overflows()))
	if err := data.SanityCheck(); err != nil {
		s.stats.UpdateCounterBy("data_sanity_check_error", 1)
		return fmt.Errorf("sanity checking data point: %w", err)
	}
	s.stats.SetCounter("data_sanity_check_error", 0)

	// store DataPoint in ring buffer
	s.state.pushDataPoint(data)

	bound, drift, err := s.calculate()
	if err != nil {
		if errors.Is(err, errNotEnoughData) {
			log.Warning(err)
			return nil
		}
		return err
	}
	s.state.updateResults(bound, drift)
	s.stats.SetCounter("bound_ns", int64(bound))
	s.stats.SetCounter("calculated_drift_ppb", int64(drift))
	maxDp := s.state.aggregateDataPointsMax(s.cfg.RingSize)
	s.stats.SetCounter("offset_ns.abs_max", int64(maxDp.OffsetNS))
	return nil
}

// publish stores current anchor in shared memory. Bound of 0 means it's unknown yet.
func (s *Daemon) publish(mem *shm.Shm, boundNS uint64) error {
	if mem == nil {
		return nil
	}
	a := s.clock.Anchor()
	p := s.clock.Precision()
	return mem.Store(&shm.Data{
		AnchorCycles: a.Cycles,
		AnchorUnits:  a.Units,
		FrequencyHz:  a.FrequencyHz,
		Precision:    uint64(p),
		ErrorBoundNS: boundNS,
		PublishedNS:  p.ToEpochNanos(a.Units),
	})
}

// calibrate refines clock frequency and remembers the adjustment
func (s *Daemon) calibrate(ctx context.Context) error {
	r, err := s.clock.CalibrateReport(ctx, s.cfg.CalibrationDelay)
	if err != nil {
		return err
	}
	s.state.pushAdjustment(float64(r.AdjustmentHz))
	s.stats.SetCounter("calibration.adjustment_hz", r.AdjustmentHz)
	s.stats.SetCounter("calibration.residual_ns", int64(r.Sign)*int64(r.Residual.Duration()))
	s.stats.SetCounter("calibration.steps", int64(r.Steps))
	log.Debugf("calibrated: %d Hz, frequency is %d Hz", r.AdjustmentHz, r.FrequencyHz)
	return nil
}

// calibrationDue tells if calibration runs on given sync tick
func (s *Daemon) calibrationDue(tick int) bool {
	if s.cfg.CalibrationInterval <= 0 {
		return false
	}
	every := int(s.cfg.CalibrationInterval / s.cfg.SyncInterval)
	if every < 1 {
		every = 1
	}
	return tick > 0 && tick%every == 0
}

// tick measures offset, re-anchors the clock, publishes results and calibrates when it's time
func (s *Daemon) tick(ctx context.Context, mem *shm.Shm, tick int) {
	data, err := s.measure()
	if err != nil {
		log.Error(err)
		s.stats.UpdateCounterBy("data_error", 1)
	} else {
		s.stats.SetCounter("data_error", 0)
	}
	if err := s.clock.Sync(); err != nil {
		log.Error(err)
		s.stats.UpdateCounterBy("sync_error", 1)
		return
	}
	s.stats.SetCounter("sync_error", 0)
	if data != nil {
		if err := s.doWork(data); err != nil {
			log.Error(err)
			s.stats.UpdateCounterBy("processing_error", 1)
		} else {
			s.stats.SetCounter("processing_error", 0)
		}
	}
	bound, _ := s.state.results()
	if err := s.publish(mem, bound); err != nil {
		log.Errorf("publishing to shm: %v", err)
		s.stats.UpdateCounterBy("shm_error", 1)
	}
	if s.calibrationDue(tick) {
		if err := s.calibrate(ctx); err != nil {
			log.Errorf("calibrating: %v", err)
			s.stats.UpdateCounterBy("calibration_error", 1)
		} else {
			s.stats.SetCounter("calibration_error", 0)
		}
	}
}

func (s *Daemon) runClock(ctx context.Context, mem *shm.Shm) error {
	ticker := time.NewTicker(s.cfg.SyncInterval)
	defer ticker.Stop()
	for tick := 0; ; tick++ { // first run without delay, then at interval
		s.tick(ctx, mem, tick)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Daemon) collectSysStats() {
	stats, err := s.sys.CollectRuntimeStats()
	if err != nil {
		log.Warningf("collecting process stats: %v", err)
		return
	}
	for k, v := range stats {
		s.stats.SetCounter(k, int64(v))
	}
}

func (s *Daemon) runSysStats(ctx context.Context) error {
	ticker := time.NewTicker(sysStatsInterval)
	defer ticker.Stop()
	for {
		s.collectSysStats()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Run a daemon
func (s *Daemon) Run(ctx context.Context) error {
	var mem *shm.Shm
	if s.cfg.ShmPath != "" {
		var err error
		mem, err = shm.Create(s.cfg.ShmPath)
		if err != nil {
			return fmt.Errorf("opening shm: %w", err)
		}
		defer mem.Close()
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.runClock(ctx, mem) })
	eg.Go(func() error { return s.runSysStats(ctx) })
	err := eg.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
