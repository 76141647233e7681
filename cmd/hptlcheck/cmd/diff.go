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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
)

func init() {
	RootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&convertFromFlag, "from", formatUnits, fmt.Sprintf("input format: %s, %s or %s (RFC3339)", formatUnits, formatNanos, formatTime))
}

func diff(p clock.Precision, from, a, b string) (clock.Timespec, clock.Sign, error) {
	ta, err := parseTimestamp(p, from, a)
	if err != nil {
		return clock.Timespec{}, clock.Positive, err
	}
	tb, err := parseTimestamp(p, from, b)
	if err != nil {
		return clock.Timespec{}, clock.Positive, err
	}
	d, sign := clock.AbsDifference(p.ToTimespec(ta), p.ToTimespec(tb))
	return d, sign, nil
}

var diffCmd = &cobra.Command{
	Use:   "diff A B",
	Short: "Print difference A-B between two timestamps",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()

		p, err := precision()
		if err != nil {
			log.Fatal(err)
		}
		d, sign, err := diff(p, convertFromFlag, args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s%s (%s%v)\n", sign, d, sign, d.Duration())
	},
}
