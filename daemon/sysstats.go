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
package daemon

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// SysStats collects stats about the daemon process, including context switches
// which may move the sync loop between cores.
type SysStats struct {
	started time.Time
	prev    map[string]uint64
}

// deltas are reported as change since the previous collection
var deltaKeys = []string{
	"process.ctx_switches.voluntary",
	"process.ctx_switches.involuntary",
	"runtime.gc.count",
	"runtime.gc.pause_ns",
	"runtime.mem.mallocs",
}

// addDeltas adds "<key>.delta" for every monotonic counter seen in both collections
func addDeltas(cur, prev map[string]uint64) {
	if prev == nil {
		return
	}
	for _, k := range deltaKeys {
		c, okc := cur[k]
		p, okp := prev[k]
		// counters can only go back on reset
		if !okc || !okp || p > c {
			continue
		}
		cur[k+".delta"] = c - p
	}
}

// CollectRuntimeStats gathers process and Go runtime stats
func (s *SysStats) CollectRuntimeStats() (map[string]uint64, error) {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	stats := map[string]uint64{
		"process.alive":  1,
		"process.uptime": uint64(time.Since(s.started).Seconds()),
	}
	if val, err := proc.MemoryInfo(); err == nil {
		stats["process.rss"] = val.RSS
	}
	if val, err := proc.NumThreads(); err == nil {
		stats["process.num_threads"] = uint64(val)
	}
	if val, err := proc.NumCtxSwitches(); err == nil {
		stats["process.ctx_switches.voluntary"] = uint64(val.Voluntary)
		stats["process.ctx_switches.involuntary"] = uint64(val.Involuntary)
	}

	m := &runtime.MemStats{}
	runtime.ReadMemStats(m)
	stats["runtime.goroutines"] = uint64(runtime.NumGoroutine())
	stats["runtime.gomaxprocs"] = uint64(runtime.GOMAXPROCS(0))
	stats["runtime.mem.heap.inuse"] = m.HeapInuse
	stats["runtime.mem.mallocs"] = m.Mallocs
	stats["runtime.gc.count"] = uint64(m.NumGC)
	stats["runtime.gc.pause_ns"] = m.PauseTotalNs

	addDeltas(stats, s.prev)
	s.prev = stats
	return stats, nil
}
