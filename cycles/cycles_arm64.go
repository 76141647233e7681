//go:build arm64

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

package cycles

// Name of the counter we read
const Name = "cntvct"

// Read returns the virtual counter (CNTVCT_EL0).
// Implemented in cycles_arm64.s
//
//go:noescape
func Read() uint64

// ReadOrdered returns the virtual counter after an instruction barrier.
// Implemented in cycles_arm64.s
//
//go:noescape
func ReadOrdered() uint64

// frequency reads CNTFRQ_EL0.
// Implemented in cycles_arm64.s
//
//go:noescape
func frequency() uint64

// KnownFrequencyHz returns counter frequency as reported by CNTFRQ_EL0.
// Firmware is supposed to set it, but some boards leave it at 0.
func KnownFrequencyHz() uint64 {
	return frequency()
}
