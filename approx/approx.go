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
/*
Package approx estimates timestamps of a data stream from byte counts.

Reading the clock for every packet can be too expensive at line rate. Estimator
keeps a transfer rate in bytes per clock unit, predicts timestamps from bytes
seen so far and reads the real clock only every Cadence calls to correct the rate.
*/
package approx

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// defaults
const (
	DefaultCadence     = 100
	DefaultInitialRate = 1250 // bytes per unit, 100Gb/s at 100ns units or 10Gb/s at microsecond units
)

// Timestamper is a clock returning time in fixed units
type Timestamper interface {
	Now() uint64
}

// Config represents Estimator configuration
type Config struct {
	Cadence       uint32 // how many estimations between clock reads
	OverheadBytes uint64 // per-packet bytes not accounted in size, like preamble and inter-frame gap
	InitialRate   uint64 // bytes per unit until first correction
}

// DefaultConfig returns Config with default values
func DefaultConfig() *Config {
	return &Config{
		Cadence:     DefaultCadence,
		InitialRate: DefaultInitialRate,
	}
}

// Validate makes sure config is valid
func (c *Config) Validate() error {
	if c.Cadence == 0 {
		return fmt.Errorf("bad config: 'cadence' must be >0")
	}
	if c.InitialRate == 0 {
		return fmt.Errorf("bad config: 'initialrate' must be >0")
	}
	return nil
}

// Estimator predicts timestamps from transferred bytes
type Estimator struct {
	sync.Mutex
	ts  Timestamper
	cfg Config

	since uint32 // estimations since last correction
	acc   uint64 // bytes since last correction
	rate  uint64 // bytes per unit
	last  uint64 // time of last correction
}

// New creates Estimator starting at current time of ts
func New(ts Timestamper, cfg *Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{
		ts:   ts,
		cfg:  *cfg,
		rate: cfg.InitialRate,
		last: ts.Now(),
	}, nil
}

// EstimateTimeAfter returns estimated time once size more bytes are transferred.
// Estimations never go backwards.
func (e *Estimator) EstimateTimeAfter(size uint32) uint64 {
	e.Lock()
	defer e.Unlock()
	if e.since == e.cfg.Cadence {
		e.correct()
		e.since = 1
	} else {
		e.since++
	}
	e.acc += uint64(size) + e.cfg.OverheadBytes
	return e.last + e.acc/e.rate
}

// correct reads the clock and derives the rate from bytes seen since the last correction
func (e *Estimator) correct() {
	predicted := e.last + e.acc/e.rate
	actual := e.ts.Now()
	if actual > e.last {
		e.rate = e.acc / (actual - e.last)
		if e.rate == 0 {
			e.rate = 1
		}
	}
	if predicted > actual {
		log.Debugf("approx: estimation is %d units ahead, rate is now %d", predicted-actual, e.rate)
		e.last = predicted
	} else {
		e.last = actual
	}
	e.acc = 0
}

// Rate returns current rate estimation in bytes per unit
func (e *Estimator) Rate() uint64 {
	e.Lock()
	defer e.Unlock()
	return e.rate
}

// Reset starts estimating from current time of the clock, keeping the rate.
// Call it after the clock was re-anchored.
func (e *Estimator) Reset() {
	e.Lock()
	defer e.Unlock()
	e.last = e.ts.Now()
	e.acc = 0
	e.since = 0
}
