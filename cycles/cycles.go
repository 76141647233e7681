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
Package cycles reads the CPU cycle counter.

On amd64 this is the time stamp counter (RDTSC), on arm64 the virtual counter
(CNTVCT_EL0). Other platforms fall back to a monotonic nanosecond counter, which
makes the rest of the stack work everywhere at a reduced read speed.

The counter is read per core and no attempt is made to keep values consistent
across cores or sockets.
*/
package cycles

// Source is anything that can produce cycle counter readings
type Source interface {
	Cycles() uint64
}

// Counter is the hardware cycle counter of the current platform
type Counter struct{}

// Cycles implements Source
func (Counter) Cycles() uint64 {
	return Read()
}

// OrderedCounter is the hardware cycle counter read with instruction ordering.
// It's slower than Counter and meant for sampling around sleeps.
type OrderedCounter struct{}

// Cycles implements Source
func (OrderedCounter) Cycles() uint64 {
	return ReadOrdered()
}

// Func allows using an ordinary function as a Source
type Func func() uint64

// Cycles implements Source
func (f Func) Cycles() uint64 {
	return f()
}
