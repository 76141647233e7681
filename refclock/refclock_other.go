//go:build !linux

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
	"time"
)

// ClockRealtime is the clock id of the system wall clock
const ClockRealtime = 0

// Now implements Clock
func (Realtime) Now() (time.Time, error) {
	return time.Now(), nil
}

// Now implements Clock. There is no raw monotonic clock to read here.
func (MonotonicRaw) Now() (time.Time, error) {
	return time.Time{}, ErrUnsupported
}
