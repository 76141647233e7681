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
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/cycles"
	"github.com/facebook/hptl/refclock"
)

// flags
var benchIterationsFlag int

func init() {
	RootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVarP(&benchIterationsFlag, "iterations", "n", 1000000, "reads per source")
}

// benchSource is a named way of reading time
type benchSource struct {
	name string
	read func()
}

// benchResult is average cost of a single read
type benchResult struct {
	name    string
	perRead time.Duration
	total   time.Duration
}

func benchmark(sources []benchSource, iterations int) []benchResult {
	results := make([]benchResult, 0, len(sources))
	for _, s := range sources {
		start := time.Now()
		for i := 0; i < iterations; i++ {
			s.read()
		}
		total := time.Since(start)
		results = append(results, benchResult{
			name:    s.name,
			perRead: total / time.Duration(iterations),
			total:   total,
		})
	}
	return results
}

func benchRun(ctx context.Context, iterations int) error {
	if iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}
	c, err := newClock(ctx)
	if err != nil {
		return err
	}
	var rt refclock.Realtime
	sources := []benchSource{
		{name: cycles.Name, read: func() { cycles.Read() }},
		{name: cycles.Name + " ordered", read: func() { cycles.ReadOrdered() }},
		{name: "hybrid clock", read: func() { c.Now() }},
		{name: "realtime", read: func() { _, _ = rt.Now() }},
		{name: "time.Now", read: func() { time.Now() }},
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"source", "per read", "total"})
	for _, r := range benchmark(sources, iterations) {
		table.Append([]string{r.name, r.perRead.String(), r.total.String()})
	}
	table.Render()
	return nil
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure cost of reading time from different sources",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := benchRun(c.Context(), benchIterationsFlag); err != nil {
			log.Fatal(err)
		}
	},
}
