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
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// StatsServer is a stats server interface
type StatsServer interface {
	// Reset atomically sets all the counters to 0
	Reset()
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
}

// Stats keeps daemon counters in memory.
// Counters are created on first use and never removed.
type Stats struct {
	sync.RWMutex
	counters map[string]*atomic.Int64
}

// NewStats created new instance of Stats
func NewStats() *Stats {
	return &Stats{counters: map[string]*atomic.Int64{}}
}

func (s *Stats) counter(key string) *atomic.Int64 {
	s.RLock()
	c, ok := s.counters[key]
	s.RUnlock()
	if ok {
		return c
	}
	s.Lock()
	defer s.Unlock()
	if c, ok = s.counters[key]; !ok {
		c = &atomic.Int64{}
		s.counters[key] = c
	}
	return c
}

// UpdateCounterBy will increment counter
func (s *Stats) UpdateCounterBy(key string, count int64) {
	s.counter(key).Add(count)
}

// SetCounter will set a counter to the provided value
func (s *Stats) SetCounter(key string, val int64) {
	s.counter(key).Store(val)
}

// Get returns a copy of all counters
func (s *Stats) Get() map[string]int64 {
	s.RLock()
	defer s.RUnlock()
	ret := make(map[string]int64, len(s.counters))
	for key, c := range s.counters {
		ret[key] = c.Load()
	}
	return ret
}

// Reset sets all counters to 0
func (s *Stats) Reset() {
	s.Lock()
	defer s.Unlock()
	for _, c := range s.counters {
		c.Store(0)
	}
}

// JSONStats serves counters over http, as JSON and in Prometheus format
type JSONStats struct {
	*Stats
	prom *PrometheusExporter
}

// NewJSONStats returns a new JSONStats
func NewJSONStats() *JSONStats {
	s := NewStats()
	return &JSONStats{Stats: s, prom: NewPrometheusExporter(s)}
}

// Handler returns http handler serving counters as JSON on / and in Prometheus format on /metrics
func (s *JSONStats) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	mux.Handle("/metrics", s.prom.Handler())
	return mux
}

// Start runs http server, it only returns if the listener failed
func (s *JSONStats) Start(monitoringport int) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", monitoringport),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Infof("Starting http stats server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start listener: %v", err)
	}
}

func (s *JSONStats) handleRequest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Get()); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}
