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
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/cycles"
	"github.com/facebook/hptl/refclock"
	"github.com/facebook/hptl/shm"
)

// flags
var shmPathFlag string

func init() {
	RootCmd.AddCommand(shmCmd)
	shmCmd.Flags().StringVar(&shmPathFlag, "path", shm.DefaultPath, "path to shared memory published by hptl-daemon")
}

func shmRun(path string) error {
	mem, err := shm.Open(path)
	if err != nil {
		return fmt.Errorf("opening shared memory: %w", err)
	}
	defer mem.Close()
	d, err := mem.Load()
	if err != nil {
		return fmt.Errorf("reading shared memory: %w", err)
	}
	fmt.Print(d.Dump())
	p := clock.Precision(d.Precision)
	t, err := d.Now(cycles.Read())
	if err != nil {
		return err
	}
	fmt.Printf("published: %v ago\n", time.Since(time.Unix(0, int64(d.PublishedNS))))
	fmt.Printf("now: %s\n", p.ToTimespec(t))
	if d.ErrorBoundNS == 0 {
		fmt.Println("error bound: unknown")
	} else {
		fmt.Printf("error bound: %v\n", time.Duration(d.ErrorBoundNS))
	}
	ref, err := refclock.Realtime{}.Now()
	if err != nil {
		return fmt.Errorf("reading reference clock: %w", err)
	}
	diff, sign := clock.AbsDifference(p.ToTimespec(t), clock.TimespecFromTime(ref))
	fmt.Printf("offset from reference: %s%v\n", sign, diff.Duration())
	return nil
}

var shmCmd = &cobra.Command{
	Use:   "shm",
	Short: "Print clock state published by hptl-daemon",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := shmRun(shmPathFlag); err != nil {
			log.Fatal(err)
		}
	},
}
