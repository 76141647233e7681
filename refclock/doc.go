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
Package refclock contains the reference clocks the cycle counter is anchored to.

Supported clocks are
  - Realtime, the system wall clock (CLOCK_REALTIME). Anchors and calibration use it.
  - MonotonicRaw, the monotonic clock not subject to NTP slewing (CLOCK_MONOTONIC_RAW).
    Frequency discovery prefers it and degrades when it's missing.

Additionally it exposes the kernel clock discipline status through Status,
which reads the clock's current frequency adjustment and synchronization state
via CLOCK_ADJTIME, and NominalCPUHz which reports the CPU frequency advertised
by the platform.
*/
package refclock
