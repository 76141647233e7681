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
	"math"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// how many times Read re-anchors on overflow before giving up
const maxOverflowRetries = 2

// Anchor is a synchronization point: cycle counter value and time in units at that moment,
// together with frequency used to move away from it. Anchors are never modified once published.
type Anchor struct {
	Cycles      uint64
	Units       uint64
	FrequencyHz uint64
}

// at returns time in units at given counter value, and false if the delta doesn't fit 64 bits
func (a *Anchor) at(c uint64, p Precision) (uint64, bool) {
	hi, lo := bits.Mul64(c-a.Cycles, uint64(p))
	if hi != 0 {
		return 0, false
	}
	return lo/a.FrequencyHz + a.Units, true
}

// Clock is a cycle counter based clock anchored to the wall clock.
// All methods are safe for concurrent use: readers load the current anchor atomically,
// anything replacing it is serialized.
type Clock struct {
	cfg       *Config
	precision Precision
	src       Sources

	anchor atomic.Pointer[Anchor]
	mu     sync.Mutex // serializes anchor replacement

	overflows atomic.Uint64
}

// New initializes Clock reading hardware cycle counter and system clocks
func New(ctx context.Context, cfg *Config) (*Clock, error) {
	return NewWithSources(ctx, cfg, DefaultSources())
}

// NewWithSources initializes Clock with provided sources.
// Unless cfg specifies frequency, it's discovered and, if configured, calibrated.
func NewWithSources(ctx context.Context, cfg *Config, src Sources) (*Clock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := PrecisionFromDigits(cfg.PrecisionDigits)
	if err != nil {
		return nil, err
	}
	if src.Sleep == nil {
		src.Sleep = SleepContext
	}
	c := &Clock{
		cfg:       cfg,
		precision: p,
		src:       src,
	}

	hz := cfg.FrequencyHz
	if hz == 0 {
		d, err := DiscoverFrequencyHz(ctx, src.Cycles, src.Monotonic, src.Sleep)
		if err != nil {
			return nil, fmt.Errorf("discovering cycle counter frequency: %w", err)
		}
		hz = d.FrequencyHz
	}
	c.anchor.Store(&Anchor{FrequencyHz: hz})
	if err := c.Sync(); err != nil {
		return nil, fmt.Errorf("initial sync: %w", err)
	}
	if span := c.MaxAnchorSpan(); span < time.Second {
		log.Warningf("clock has to re-anchor every %v, consider lower precision", span)
	}
	if cfg.FrequencyHz == 0 && cfg.CalibrateOnStart {
		if _, err := c.Calibrate(ctx, 0); err != nil {
			return nil, fmt.Errorf("initial calibration: %w", err)
		}
	}
	a := c.Anchor()
	log.Infof("clock started: hz: %d, precision: %v, cycles: %d, units: %d", a.FrequencyHz, p, a.Cycles, a.Units)
	return c, nil
}

// Precision returns clock precision
func (c *Clock) Precision() Precision {
	return c.precision
}

// Anchor returns a copy of the current anchor
func (c *Clock) Anchor() Anchor {
	return *c.anchor.Load()
}

// FrequencyHz returns current cycle counter frequency estimation
func (c *Clock) FrequencyHz() uint64 {
	return c.anchor.Load().FrequencyHz
}

// Overflows returns how many times cycle delta overflowed since the clock was created
func (c *Clock) Overflows() uint64 {
	return c.overflows.Load()
}

// MaxAnchorSpan returns how long the clock can go without re-anchoring before the delta overflows
func (c *Clock) MaxAnchorSpan() time.Duration {
	secs := float64(math.MaxUint64) / float64(c.precision) / float64(c.FrequencyHz())
	if secs >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs * float64(time.Second))
}

// Sync re-anchors the clock to the reference wall clock.
// When reference can't be read the previous anchor stays in place.
func (c *Clock) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncLocked()
}

func (c *Clock) syncLocked() error {
	now, err := c.src.Realtime.Now()
	if err != nil {
		log.Warningf("sync: failed to read reference clock: %v", err)
		return fmt.Errorf("%w: %w", ErrReferenceClockUnavailable, err)
	}
	a := &Anchor{
		Cycles:      c.src.Cycles.Cycles(),
		Units:       c.precision.FromTime(now),
		FrequencyHz: c.anchor.Load().FrequencyHz,
	}
	c.anchor.Store(a)
	log.Debugf("sync: cycles: %d, units: %d", a.Cycles, a.Units)
	return nil
}

// Rebase re-anchors the clock at its own current reading, so the reading doesn't jump.
// It bounds overflow risk without correcting accumulated drift, use Sync for that.
func (c *Clock) Rebase() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebaseLocked()
}

func (c *Clock) rebaseLocked() error {
	old := c.anchor.Load()
	now := c.src.Cycles.Cycles()
	hi, lo := bits.Mul64(now-old.Cycles, uint64(c.precision))
	if hi >= old.FrequencyHz {
		return ErrCounterOverflow
	}
	elapsed, _ := bits.Div64(hi, lo, old.FrequencyHz)
	a := &Anchor{
		Cycles:      now,
		Units:       old.Units + elapsed,
		FrequencyHz: old.FrequencyHz,
	}
	c.anchor.Store(a)
	log.Debugf("rebase: cycles: %d, units: %d", a.Cycles, a.Units)
	return nil
}

// resync replaces stale anchor after an overflow. If somebody already did it, there's nothing to do.
func (c *Clock) resync(stale *Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anchor.Load() != stale {
		return
	}
	if c.cfg.OverflowResync == ResyncContinuous {
		err := c.rebaseLocked()
		if err == nil {
			return
		}
		log.Debugf("rebase on overflow failed, falling back to sync: %v", err)
	}
	// on failure the anchor stays and the caller runs out of retries
	_ = c.syncLocked()
}

// setFrequency replaces frequency keeping the anchor point
func (c *Clock) setFrequency(hz uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := *c.anchor.Load()
	a.FrequencyHz = hz
	c.anchor.Store(&a)
}

// Read returns current time in units since Unix epoch.
// Overflow forces re-anchoring, ErrCounterOverflow is returned if it keeps happening.
func (c *Clock) Read() (uint64, error) {
	for i := 0; i <= maxOverflowRetries; i++ {
		// anchor must be loaded before the counter is read, so the delta is never negative
		a := c.anchor.Load()
		if t, ok := a.at(c.src.Cycles.Cycles(), c.precision); ok {
			return t, nil
		}
		c.overflows.Add(1)
		c.resync(a)
	}
	return 0, ErrCounterOverflow
}

// Now returns current time in units since Unix epoch.
// It never fails: if the counter keeps overflowing, time of the latest anchor is returned.
func (c *Clock) Now() uint64 {
	t, err := c.Read()
	if err != nil {
		log.Errorf("reading clock: %v", err)
		return c.anchor.Load().Units
	}
	return t
}

// NowTime returns current time as time.Time
func (c *Clock) NowTime() time.Time {
	return c.precision.ToTime(c.Now())
}

// WaitUnits spins until n units have passed.
// It burns CPU the whole time without yielding to the scheduler.
func (c *Clock) WaitUnits(n uint64) {
	end := deadline(c.Now(), n)
	for c.Now() < end {
	}
}

// deadline returns start+n, saturated at the largest representable time
func deadline(start, n uint64) uint64 {
	end, carry := bits.Add64(start, n, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return end
}

// Wait spins for d, truncated to clock resolution
func (c *Clock) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	c.WaitUnits(uint64(d) / c.precision.ResolutionNanos())
}
