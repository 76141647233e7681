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
	"math"
	"os"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/cycles"
	"github.com/facebook/hptl/refclock"
)

type status int

// possible check results
const (
	OK status = iota
	WARN
	FAIL
)

func (s status) String() string {
	switch s {
	case OK:
		return color.GreenString("[ OK ]")
	case WARN:
		return color.YellowString("[WARN]")
	}
	return color.RedString("[FAIL]")
}

// diagResult is everything we learned about the clock on this host
type diagResult struct {
	Discipline    *refclock.Discipline
	DisciplineErr error
	Discovery     *clock.Discovery
	NominalHz     uint64
	Calibration   *clock.Calibration
	AnchorSpan    time.Duration
	SyncInterval  time.Duration
}

// diagnoser is function that does checks on diagResult
type diagnoser func(r *diagResult) (status, string)

func fmtThreshold(warnThreshold any) string {
	return color.BlueString("%v", warnThreshold)
}

func checkAgainstThresholdNonZero[T constraints.Ordered](name string, value, warnThreshold, failThreshold T, explanation string) (status, string) {
	var zero T // can't use 0 as untyped const, so use zero value for each type
	if value == zero {
		return FAIL, fmt.Sprintf(
			"%s is %s, we expect it to be non-zero and within %s%s",
			name,
			color.RedString("%v", value),
			fmtThreshold(warnThreshold),
			". "+explanation,
		)
	}
	return checkAgainstThreshold(name, value, warnThreshold, failThreshold, explanation)
}

// generic function to check value against some thresholds
func checkAgainstThreshold[T constraints.Ordered](name string, value, warnThreshold, failThreshold T, explanation string) (status, string) {
	msgTemplate := "%s is %s, we expect it to be within %s%s"
	thresholdStr := fmtThreshold(warnThreshold)

	if value > failThreshold {
		return FAIL, fmt.Sprintf(msgTemplate, name, color.RedString("%v", value), thresholdStr, ". "+explanation)
	}
	if value > warnThreshold {
		return WARN, fmt.Sprintf(msgTemplate, name, color.YellowString("%v", value), thresholdStr, ". "+explanation)
	}
	return OK, fmt.Sprintf(msgTemplate, name, color.GreenString("%v", value), thresholdStr, "")
}

// same as checkAgainstThreshold, but value must stay above thresholds
func checkAboveThreshold[T constraints.Ordered](name string, value, warnThreshold, failThreshold T, explanation string) (status, string) {
	msgTemplate := "%s is %s, we expect it to be at least %s%s"
	thresholdStr := fmtThreshold(warnThreshold)

	if value < failThreshold {
		return FAIL, fmt.Sprintf(msgTemplate, name, color.RedString("%v", value), thresholdStr, ". "+explanation)
	}
	if value < warnThreshold {
		return WARN, fmt.Sprintf(msgTemplate, name, color.YellowString("%v", value), thresholdStr, ". "+explanation)
	}
	return OK, fmt.Sprintf(msgTemplate, name, color.GreenString("%v", value), thresholdStr, "")
}

func checkReferenceSynchronized(r *diagResult) (status, string) {
	if r.DisciplineErr != nil {
		return WARN, fmt.Sprintf("Reference clock state is unknown: %v", r.DisciplineErr)
	}
	if !r.Discipline.Synchronized() {
		return FAIL, fmt.Sprintf("Reference clock is not synchronized, state is %s", r.Discipline.StateString())
	}
	return OK, fmt.Sprintf("Reference clock is synchronized, state is %s", r.Discipline.StateString())
}

func checkReferenceMaxError(r *diagResult) (status, string) {
	if r.DisciplineErr != nil {
		return WARN, "No reference clock max error available"
	}
	// kernel keeps growing max error by 500ppm while nobody disciplines the clock
	const warnThreshold = 100 * time.Millisecond
	const failThreshold = time.Second
	return checkAgainstThreshold(
		"Reference clock max error",
		r.Discipline.MaxError,
		warnThreshold,
		failThreshold,
		"Cycle counter clock can't be better than the clock it's anchored to",
	)
}

func checkDiscovery(r *diagResult) (status, string) {
	if r.Discovery.Degraded {
		return WARN, "Frequency was discovered without monotonic reference clock, expect it to be off"
	}
	return OK, fmt.Sprintf("Frequency was discovered against monotonic reference clock: %d Hz", r.Discovery.FrequencyHz)
}

func checkNominalFrequency(r *diagResult) (status, string) {
	if r.NominalHz == 0 {
		return WARN, "No nominal CPU frequency available"
	}
	// invariant counters usually tick at nominal CPU frequency, but not all of them do
	const warnThreshold = 5.0
	const failThreshold = 50.0
	deviation := math.Abs(float64(r.Discovery.FrequencyHz)-float64(r.NominalHz)) / float64(r.NominalHz) * 100
	return checkAgainstThreshold(
		"Deviation (%) of discovered frequency from nominal CPU frequency",
		math.Round(deviation*100)/100,
		warnThreshold,
		failThreshold,
		"Counter frequency far from nominal CPU frequency may mean it's not invariant",
	)
}

func checkCalibrationResidual(r *diagResult) (status, string) {
	const warnThreshold = 10 * time.Microsecond
	const failThreshold = time.Millisecond
	return checkAgainstThreshold(
		"Calibration residual",
		r.Calibration.Residual.Duration(),
		warnThreshold,
		failThreshold,
		"Residual is how far calibrated clock is from the reference clock",
	)
}

func checkCalibrationAdjustment(r *diagResult) (status, string) {
	// calibration should only fine-tune discovered frequency
	const warnThreshold = 100.0
	const failThreshold = 1000.0
	ppm := math.Abs(float64(r.Calibration.AdjustmentHz)) / float64(r.Calibration.FrequencyHz) * 1e6
	return checkAgainstThreshold(
		"Calibration adjustment (PPM)",
		math.Round(ppm*100)/100,
		warnThreshold,
		failThreshold,
		"Large adjustment means discovered frequency was far off",
	)
}

func checkAnchorSpan(r *diagResult) (status, string) {
	return checkAboveThreshold(
		"Time before cycle delta overflows",
		r.AnchorSpan,
		10*r.SyncInterval,
		r.SyncInterval,
		"Clock must be re-anchored before counter delta overflows",
	)
}

var diagnosers = []diagnoser{
	checkReferenceSynchronized,
	checkReferenceMaxError,
	checkDiscovery,
	checkNominalFrequency,
	checkCalibrationResidual,
	checkCalibrationAdjustment,
	checkAnchorSpan,
}

func runDiagnosers(r *diagResult, toRun []diagnoser) int {
	failed := 0
	for _, check := range toRun {
		status, msg := check(r)
		if status != OK {
			failed++
		}
		fmt.Printf("%s %s\n", status, msg)
	}
	return failed
}

func collectDiag(ctx context.Context) (*diagResult, error) {
	r := &diagResult{SyncInterval: time.Second}
	r.Discipline, r.DisciplineErr = refclock.Status(refclock.ClockRealtime)

	d, err := clock.DiscoverFrequencyHz(ctx, cycles.OrderedCounter{}, refclock.MonotonicRaw{}, clock.SleepContext)
	if err != nil {
		return nil, fmt.Errorf("discovering frequency: %w", err)
	}
	r.Discovery = d
	if r.NominalHz, err = refclock.NominalCPUHz(); err != nil {
		log.Debugf("no nominal CPU frequency: %v", err)
	}

	cfg := clockConfig()
	cfg.FrequencyHz = d.FrequencyHz
	c, err := clock.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing clock: %w", err)
	}
	if r.Calibration, err = c.CalibrateReport(ctx, 0); err != nil {
		return nil, fmt.Errorf("calibrating: %w", err)
	}
	r.AnchorSpan = c.MaxAnchorSpan()
	return r, nil
}

func init() {
	RootCmd.AddCommand(diagCmd)
}

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Perform basic cycle counter clock diagnosis, report in human-readable form.",
	Long: `Perform basic cycle counter clock diagnosis, report in human-readable form.
Discovers and calibrates counter frequency, checks it against the system clock, and prints the results.
Exit code will be equal to sum of failed checks.
`,
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

		result, err := collectDiag(c.Context())
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(runDiagnosers(result, diagnosers))
	},
}
