//go:build !amd64 && !arm64

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

import "time"

// Name of the counter we read
const Name = "monotonic"

var start = time.Now()

// Read falls back to monotonic nanoseconds since process start
func Read() uint64 {
	return uint64(time.Since(start))
}

// ReadOrdered is the same as Read here
func ReadOrdered() uint64 {
	return Read()
}

// KnownFrequencyHz is exact for the fallback: it counts nanoseconds
func KnownFrequencyHz() uint64 {
	return uint64(time.Second)
}
