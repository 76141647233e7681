//go:build linux

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
package refclock

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Status reads clock discipline via CLOCK_ADJTIME without modifying anything
func Status(clockid int32) (*Discipline, error) {
	tx := &unix.Timex{}
	state, err := unix.ClockAdjtime(clockid, tx)
	if err != nil {
		return nil, fmt.Errorf("clock_adjtime(%d): %w", clockid, err)
	}
	// man(2) clock_adjtime, maxerror and esterror are in microseconds
	return &Discipline{
		FreqPPB:  float64(tx.Freq) / PPBToTimexPPM,
		MaxError: time.Duration(tx.Maxerror) * time.Microsecond,
		EstError: time.Duration(tx.Esterror) * time.Microsecond,
		State:    state,
	}, nil
}
