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
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	systemd "github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/daemon"
	"github.com/facebook/hptl/refclock"
)

func main() {
	var (
		cfg            = daemon.DefaultConfig()
		err            error
		cfgPath        string
		csvLog         bool
		csvPath        string
		csvSampleRate  int
		verbose        bool
		monitoringPort int
		overflowResync string
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "hptl daemon\n")
		fmt.Fprintf(flag.CommandLine.Output(), "%s\n\nFlags:\n", daemon.MathHelp)
		flag.PrintDefaults()
	}

	flag.UintVar(&cfg.Clock.PrecisionDigits, "precision", clock.DefaultPrecisionDigits, "Digits of sub-second clock resolution, 0-9")
	flag.Uint64Var(&cfg.Clock.FrequencyHz, "frequency", 0, "Cycle counter frequency in Hz. 0 means discover and calibrate it")
	flag.DurationVar(&cfg.Clock.NoiseFloor, "noisefloor", clock.DefaultNoiseFloor, "Calibration stops once error is below this")
	flag.StringVar(&overflowResync, "overflowresync", string(clock.ResyncReference), "Re-anchoring on counter overflow: reference or continuous")
	flag.Int64Var(&cfg.CalibrationDelay, "calibrationdelay", 0, "Constant delay of reading the reference clock, in clock units")
	flag.IntVar(&monitoringPort, "monitoringport", 21040, "Port to run monitoring server on")
	flag.IntVar(&cfg.RingSize, "buffer", daemon.MathDefaultHistory, "Size of ring buffers, must be at least size of largest num of samples used in formulas")
	flag.StringVar(&cfg.Math.Bound, "bound", daemon.MathDefaultBound, "Math expression for error bound")
	flag.StringVar(&cfg.Math.Drift, "drift", daemon.MathDefaultDrift, "Math expression for drift PPB")
	flag.DurationVar(&cfg.SyncInterval, "i", cfg.SyncInterval, "Interval at which we re-anchor the clock and update data in shm")
	flag.DurationVar(&cfg.CalibrationInterval, "I", cfg.CalibrationInterval, "Interval at which we calibrate frequency. 0 means disabled.")
	flag.StringVar(&cfg.ShmPath, "shm", cfg.ShmPath, "Path to publish clock state to. Empty means disabled")

	flag.StringVar(&cfgPath, "cfg", "", "Path to config")
	flag.BoolVar(&csvLog, "csvlog", true, "Log all the metrics as CSV to log")
	flag.StringVar(&csvPath, "csvpath", "", "write CSV log into this file")
	flag.IntVar(&csvSampleRate, "csvsamplerate", 1, "log one of every N samples as CSV")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")

	flag.Parse()

	log.SetReportCaller(true)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if csvPath != "" && !csvLog {
		log.Fatalf("'csvpath' flag requires 'csvlog' flag")
	}
	cfg.Clock.OverflowResync = clock.OverflowResync(overflowResync)
	if cfgPath != "" {
		log.Warningf("using config from %s, flag values are ignored", cfgPath)
		cfg, err = daemon.ReadConfig(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if err := cfg.EvalAndValidate(); err != nil {
		log.Fatal(err)
	}
	log.Debugf("Config: %+v", *cfg)

	// set up sample logging
	w := log.StandardLogger().Writer()
	defer w.Close()
	var l daemon.Logger = daemon.NewDummyLogger(w)
	if csvLog {
		csvW := io.Writer(w)
		// set up logging of CSV samples to file
		if csvPath != "" {
			f, err := os.Create(csvPath)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			// write both to stderr and file
			csvW = io.MultiWriter(w, f)
		}
		l = daemon.NewCSVLogger(csvW, csvSampleRate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := clock.New(ctx, &cfg.Clock)
	if err != nil {
		log.Fatal(err)
	}
	stats := daemon.NewJSONStats()
	go stats.Start(monitoringPort)
	s := daemon.New(cfg, c, refclock.Realtime{}, stats, l)

	if _, err := systemd.SdNotify(false, systemd.SdNotifyReady); err != nil {
		log.Warningf("notifying systemd: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
	_, _ = systemd.SdNotify(false, systemd.SdNotifyStopping)
	log.Info("stopped")
}
