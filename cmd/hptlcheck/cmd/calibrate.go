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

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// flags
var (
	calibrateRoundsFlag int
	calibrateDelayFlag  int64
)

func init() {
	RootCmd.AddCommand(calibrateCmd)
	calibrateCmd.Flags().IntVarP(&calibrateRoundsFlag, "rounds", "r", 3, "how many calibration rounds to run")
	calibrateCmd.Flags().Int64VarP(&calibrateDelayFlag, "delay", "d", 0, "constant delay of reading the reference clock, in clock units")
}

func calibrateRun(ctx context.Context, rounds int, delay int64) error {
	c, err := newClock(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"round", "frequency(Hz)", "adjustment(Hz)", "residual", "cycles", "steps", "restarts"})
	for i := 0; i < rounds; i++ {
		r, err := c.CalibrateReport(ctx, delay)
		if err != nil {
			return fmt.Errorf("calibration round %d: %w", i, err)
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", r.FrequencyHz),
			fmt.Sprintf("%+d", r.AdjustmentHz),
			fmt.Sprintf("%s%v", r.Sign, r.Residual.Duration()),
			fmt.Sprintf("%d", r.ElapsedCycles),
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%d", r.Restarts),
		})
	}
	table.Render()
	return nil
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate cycle counter frequency against the system clock",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := calibrateRun(c.Context(), calibrateRoundsFlag, calibrateDelayFlag); err != nil {
			log.Fatal(err)
		}
	},
}
