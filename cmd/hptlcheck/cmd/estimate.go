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

	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/approx"
)

// flags
var (
	estimatePacketsFlag int
	estimateSizeFlag    uint32
	estimateConfig      = approx.DefaultConfig()
)

func init() {
	RootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().IntVarP(&estimatePacketsFlag, "packets", "n", 100000, "how many packets to estimate timestamps for")
	estimateCmd.Flags().Uint32VarP(&estimateSizeFlag, "size", "s", 1500, "packet size in bytes")
	estimateCmd.Flags().Uint32Var(&estimateConfig.Cadence, "cadence", approx.DefaultCadence, "estimations between clock reads")
	estimateCmd.Flags().Uint64Var(&estimateConfig.OverheadBytes, "overhead", 0, "per-packet bytes not accounted in size")
	estimateCmd.Flags().Uint64Var(&estimateConfig.InitialRate, "rate", approx.DefaultInitialRate, "initial rate in bytes per clock unit")
}

// estimateResult is how far estimates were from clock readings
type estimateResult struct {
	Rate   uint64
	Mean   float64
	Stddev float64
	Max    float64
}

// estimateStream feeds n packets of given size to the estimator and compares every estimate with ts
func estimateStream(ts approx.Timestamper, cfg *approx.Config, n int, size uint32) (*estimateResult, error) {
	e, err := approx.New(ts, cfg)
	if err != nil {
		return nil, err
	}
	s := welford.New()
	res := &estimateResult{}
	for i := 0; i < n; i++ {
		estimated := e.EstimateTimeAfter(size)
		actual := ts.Now()
		errUnits := float64(estimated) - float64(actual)
		if errUnits < 0 {
			errUnits = -errUnits
		}
		if errUnits > res.Max {
			res.Max = errUnits
		}
		s.Add(errUnits)
	}
	res.Rate = e.Rate()
	res.Mean = s.Mean()
	res.Stddev = s.Stddev()
	return res, nil
}

func estimateRun(ctx context.Context) error {
	c, err := newClock(ctx)
	if err != nil {
		return err
	}
	res, err := estimateStream(c, estimateConfig, estimatePacketsFlag, estimateSizeFlag)
	if err != nil {
		return err
	}
	fmt.Printf("rate: %d bytes per %v\n", res.Rate, c.Precision())
	fmt.Printf("estimation error, units: mean %.2f, stddev %.2f, max %.0f\n", res.Mean, res.Stddev, res.Max)
	return nil
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate packet timestamps from byte counts and compare them with the clock",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()

		if err := estimateRun(c.Context()); err != nil {
			log.Fatal(err)
		}
	},
}
