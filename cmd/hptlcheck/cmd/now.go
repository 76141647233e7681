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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/refclock"
)

// flags
var (
	nowCountFlag    int
	nowIntervalFlag time.Duration
)

func init() {
	RootCmd.AddCommand(nowCmd)
	nowCmd.Flags().IntVarP(&nowCountFlag, "count", "c", 1, "how many readings to take")
	nowCmd.Flags().DurationVarP(&nowIntervalFlag, "interval", "i", time.Second, "interval between readings")
}

func printNow(c *clock.Clock) error {
	t, err := c.Read()
	if err != nil {
		return err
	}
	ref, err := refclock.Realtime{}.Now()
	if err != nil {
		return fmt.Errorf("reading reference clock: %w", err)
	}
	p := c.Precision()
	diff, sign := clock.AbsDifference(p.ToTimespec(t), clock.TimespecFromTime(ref))
	fmt.Printf("units: %d\n", t)
	fmt.Printf("timespec: %s\n", p.ToTimespec(t))
	fmt.Printf("timeval: %s\n", p.ToTimeval(t))
	fmt.Printf("time: %s\n", p.ToTime(t).UTC().Format(time.RFC3339Nano))
	fmt.Printf("offset from reference: %s%v\n", sign, diff.Duration())
	return nil
}

func nowRun(ctx context.Context, count int, interval time.Duration) error {
	c, err := newClock(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			c.Wait(interval)
			fmt.Println()
		}
		if err := printNow(c); err != nil {
			return err
		}
	}
	return nil
}

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print current time read from the cycle counter",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := nowRun(c.Context(), nowCountFlag, nowIntervalFlag); err != nil {
			log.Fatal(err)
		}
	},
}
