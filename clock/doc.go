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
Package clock implements a hybrid clock: a cheap, high resolution timestamp derived
from the CPU cycle counter, periodically re-anchored against the system wall clock.

Time is expressed in fixed-point units, where the number of units per second is a
configured power of ten (see Precision). A Clock keeps an anchor: the cycle counter
value and the wall clock time at the last synchronization point, plus the estimated
counter frequency. Reading time is a single multiplication and division away from
the counter delta since the anchor.

Supported methods include
 - finding the cycle counter frequency through DiscoverFrequencyHz, which measures
   elapsed cycles over a known interval of the raw monotonic clock.
 - reading time through Now and Read. The multiplication is overflow checked,
   overflow forces the clock to re-anchor before a value is returned.
 - re-anchoring through Sync (against the wall clock) and Rebase (against the clock itself).
 - refining the frequency through Calibrate, which searches for the frequency giving
   the smallest error against the wall clock after a fixed wait.
 - spinning for short delays through WaitUnits and Wait.
 - converting units to and from Timespec, Timeval, nanoseconds and time.Time.

Accuracy depends on periodic calls to Sync: nothing here tracks CPU frequency
scaling, counter differences between cores or leap seconds.
*/
package clock
