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

const (
	discoveryInterval = 500 * time.Millisecond
	// without a reference we trust the sleep itself
	fallbackInterval = time.Second
)

// Discovery is the result of frequency discovery
type Discovery struct {
	FrequencyHz uint64
	Cycles      uint64
	Elapsed     time.Duration
	Degraded    bool // no reference clock, sleep duration was trusted
}

// DiscoverFrequencyHz measures cycle counter frequency against a monotonic reference clock.
// It's a first approximation, expect it to be off by a few Hz.
func DiscoverFrequencyHz(ctx context.Context, src CycleSource, mono ReferenceClock, sleep Sleeper) (*Discovery, error) {
	t0, err := mono.Now()
	if err != nil {
		log.Warningf("%v: %v. Cycle counter frequency may be less accurate", ErrReferenceClockUnavailable, err)
		return discoverFallback(ctx, src, sleep)
	}
	start := src.Cycles()
	if err := sleep(ctx, discoveryInterval); err != nil {
		return nil, err
	}
	t1, err := mono.Now()
	end := src.Cycles()
	if err != nil {
		log.Warningf("%v: %v. Cycle counter frequency may be less accurate", ErrReferenceClockUnavailable, err)
		return discoverFallback(ctx, src, sleep)
	}
	d := &Discovery{
		Cycles:  end - start,
		Elapsed: t1.Sub(t0),
	}
	if d.Elapsed <= 0 {
		log.Warningf("reference clock didn't advance (%v). Cycle counter frequency may be less accurate", d.Elapsed)
		return discoverFallback(ctx, src, sleep)
	}
	hi, lo := bits.Mul64(d.Cycles, uint64(time.Second))
	if hi >= uint64(d.Elapsed) {
		return nil, fmt.Errorf("measured frequency doesn't fit 64 bits: %d cycles in %v", d.Cycles, d.Elapsed)
	}
	d.FrequencyHz, _ = bits.Div64(hi, lo, uint64(d.Elapsed))
	if d.FrequencyHz == 0 {
		return nil, ErrZeroFrequency
	}
	log.Debugf("discovered frequency: %d Hz (%d cycles in %v)", d.FrequencyHz, d.Cycles, d.Elapsed)
	return d, nil
}

func discoverFallback(ctx context.Context, src CycleSource, sleep Sleeper) (*Discovery, error) {
	start := src.Cycles()
	if err := sleep(ctx, fallbackInterval); err != nil {
		return nil, err
	}
	d := &Discovery{
		Cycles:   src.Cycles() - start,
		Elapsed:  fallbackInterval,
		Degraded: true,
	}
	d.FrequencyHz = d.Cycles
	if d.FrequencyHz == 0 {
		return nil, ErrZeroFrequency
	}
	log.Infof("cycle counter frequency is ~%d KHz", d.FrequencyHz/1000)
	return d, nil
}
