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
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/hptl/clock"
)

// RootCmd is a main entry point. It's exported so hptlcheck could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "hptlcheck",
	Short: "Swiss Army Knife for cycle counter clocks",
}

// flags
var (
	rootVerboseFlag   bool
	rootPrecisionFlag uint
	rootFrequencyFlag uint64
	rootCalibrateFlag bool
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().UintVarP(&rootPrecisionFlag, "precision", "p", clock.DefaultPrecisionDigits, "digits of sub-second resolution, 0-9")
	RootCmd.PersistentFlags().Uint64VarP(&rootFrequencyFlag, "frequency", "f", 0, "cycle counter frequency in Hz, 0 means discover")
	RootCmd.PersistentFlags().BoolVar(&rootCalibrateFlag, "calibrate", false, "calibrate discovered frequency before use")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// clockConfig returns clock config built from root flags
func clockConfig() *clock.Config {
	cfg := clock.DefaultConfig()
	cfg.PrecisionDigits = rootPrecisionFlag
	cfg.FrequencyHz = rootFrequencyFlag
	cfg.CalibrateOnStart = rootCalibrateFlag
	return cfg
}

// precision returns precision from root flags
func precision() (clock.Precision, error) {
	return clock.PrecisionFromDigits(rootPrecisionFlag)
}

// newClock initializes hybrid clock using root flags
func newClock(ctx context.Context) (*clock.Clock, error) {
	c, err := clock.New(ctx, clockConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing clock: %w", err)
	}
	log.Debugf("clock running at %d Hz with %v resolution", c.FrequencyHz(), c.Precision())
	return c, nil
}

// Execute is the main entry point for CLI interface
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}
