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
	"fmt"
)

var (
	// ErrInvalidPrecision means requested precision is more than nanoseconds
	ErrInvalidPrecision = fmt.Errorf("invalid precision")
	// ErrReferenceClockUnavailable means the reference clock can't be read
	ErrReferenceClockUnavailable = fmt.Errorf("reference clock unavailable")
	// ErrCounterOverflow means the cycle delta since anchor can't be converted even after re-anchoring
	ErrCounterOverflow = fmt.Errorf("cycle counter delta overflow")
	// ErrAnchorMoved means clock kept being re-anchored while calibration waited
	ErrAnchorMoved = fmt.Errorf("clock re-anchored during calibration")
	// ErrZeroFrequency means cycle counter didn't advance while we measured it
	ErrZeroFrequency = fmt.Errorf("cycle counter frequency is 0")
)
