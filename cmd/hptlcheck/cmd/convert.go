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
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
)

// input formats
const (
	formatUnits = "units"
	formatNanos = "ns"
	formatTime  = "time"
)

// flags
var convertFromFlag string

func init() {
	RootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFromFlag, "from", formatUnits, fmt.Sprintf("input format: %s, %s or %s (RFC3339)", formatUnits, formatNanos, formatTime))
}

// conversion is a timestamp in every representation we support
type conversion struct {
	Units      uint64
	Timespec   clock.Timespec
	Timeval    clock.Timeval
	EpochNanos uint64
	Time       time.Time
}

func (c *conversion) String() string {
	return fmt.Sprintf(
		"units: %d\ntimespec: %s\ntimeval: %s\nepoch ns: %d\ntime: %s",
		c.Units, c.Timespec, c.Timeval, c.EpochNanos, c.Time.UTC().Format(time.RFC3339Nano),
	)
}

func parseTimestamp(p clock.Precision, from, value string) (uint64, error) {
	switch from {
	case formatUnits:
		return strconv.ParseUint(value, 10, 64)
	case formatNanos:
		ns, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, err
		}
		return p.FromEpochNanos(ns), nil
	case formatTime:
		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return 0, err
		}
		return p.FromTime(t), nil
	}
	return 0, fmt.Errorf("unsupported input format %q", from)
}

func convert(p clock.Precision, from, value string) (*conversion, error) {
	t, err := parseTimestamp(p, from, value)
	if err != nil {
		return nil, err
	}
	return &conversion{
		Units:      t,
		Timespec:   p.ToTimespec(t),
		Timeval:    p.ToTimeval(t),
		EpochNanos: p.ToEpochNanos(t),
		Time:       p.ToTime(t),
	}, nil
}

var convertCmd = &cobra.Command{
	Use:   "convert TIMESTAMP",
	Short: "Convert timestamp between clock units and calendar representations",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()

		p, err := precision()
		if err != nil {
			log.Fatal(err)
		}
		c, err := convert(p, convertFromFlag, args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(c)
	},
}
