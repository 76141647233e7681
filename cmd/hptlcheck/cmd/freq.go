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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/cycles"
	"github.com/facebook/hptl/refclock"
)

func freqRun(ctx context.Context) error {
	d, err := clock.DiscoverFrequencyHz(ctx, cycles.OrderedCounter{}, refclock.MonotonicRaw{}, clock.SleepContext)
	if err != nil {
		return err
	}
	fmt.Printf("counter: %s\n", cycles.Name)
	fmt.Printf("discovered: %d Hz (%d cycles in %v)\n", d.FrequencyHz, d.Cycles, d.Elapsed)
	if d.Degraded {
		fmt.Println(WARN, "monotonic reference clock unavailable, frequency is approximate")
	}
	if known := cycles.KnownFrequencyHz(); known != 0 {
		fmt.Printf("architectural: %d Hz\n", known)
	}
	if nominal, err := refclock.NominalCPUHz(); err == nil {
		fmt.Printf("nominal CPU: %d Hz\n", nominal)
	} else {
		log.Debugf("no nominal CPU frequency: %v", err)
	}
	return nil
}

var freqCmd = &cobra.Command{
	Use:   "freq",
	Short: "Discover cycle counter frequency",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := freqRun(c.Context()); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(freqCmd)
}
