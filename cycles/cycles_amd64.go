//go:build amd64

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
const Name = "tsc"

// Read returns the time stamp counter.
// Implemented in cycles_amd64.s
//
//go:noescape
func Read() uint64

// ReadOrdered returns the time stamp counter after all previous instructions retired.
// Implemented in cycles_amd64.s
//
//go:noescape
func ReadOrdered() uint64

// KnownFrequencyHz returns 0 as TSC frequency is not architecturally exposed,
// it has to be measured.
func KnownFrequencyHz() uint64 {
	return 0
}
