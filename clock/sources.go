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
	"time"

	"github.com/facebook/hptl/cycles"
	"github.com/facebook/hptl/refclock"
)

//go:generate mockgen -destination=mock_cycles_test.go -package=clock -mock_names=Source=MockCycleSource github.com/facebook/hptl/cycles Source
//go:generate mockgen -destination=mock_refclock_test.go -package=clock -mock_names=Clock=MockReferenceClock github.com/facebook/hptl/refclock Clock

// CycleSource provides cycle counter readings
type CycleSource = cycles.Source

// ReferenceClock provides time the clock is anchored to
type ReferenceClock = refclock.Clock

// Sleeper blocks for given duration or until context is done
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is a Sleeper backed by a timer
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sources groups everything Clock reads time from
type Sources struct {
	Cycles    CycleSource
	Realtime  ReferenceClock // anchors and calibration
	Monotonic ReferenceClock // frequency discovery
	Sleep     Sleeper
}

// DefaultSources returns hardware cycle counter and system clocks
func DefaultSources() Sources {
	return Sources{
		Cycles:    cycles.Counter{},
		Realtime:  refclock.Realtime{},
		Monotonic: refclock.MonotonicRaw{},
		Sleep:     SleepContext,
	}
}
