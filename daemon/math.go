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
package daemon

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/eclesh/welford"
)

// MathHelp is a help message used by flags in main
const MathHelp = `When composing the bound and drift formulas, here is what you can do:
supported operations:
  evaluation is done with govaluate, please check https://github.com/Knetic/govaluate/blob/master/MANUAL.md
supported variables:
  offset (list of last offsets of the clock from the reference right before re-anchoring, in ns)
  elapsed (list of times between anchors, in ns)
  driftppb (list of last drifts, offset divided by elapsed, in PPB)
  freq (list of last cycle counter frequencies, in Hz)
  adjustment (list of last calibration adjustments, in Hz)
supported functions:
  abs(value) - absolute value of single float64, for example abs(-1) = 1
  mean(values, number) - mean of list of 'number' values, for example mean(offset, 10) will take 10 elements from array 'offset' and return mean for those values
  variance(values, number) - variance of list of 'number' values, for example variance(offset, 10) will take 10 elements from array 'offset' and return variance for those values
  stddev(values, number) - standard deviation of list of 'number' values, for example stddev(offset, 10) will take 10 elements from array 'offset' and return standard deviation for those values`

const (
	// MathDefaultHistory is a default number of samples to keep
	MathDefaultHistory = 60
	// MathDefaultBound is a default formula to calculate error bound
	MathDefaultBound = "abs(mean(offset, 60)) + 4.0 * stddev(offset, 60)"
	// MathDefaultDrift is a default formula to calculate drift
	MathDefaultDrift = "mean(driftppb, 60)"
)

// Math stores our math expressions for error bound and drift in two forms: string and parsed
type Math struct {
	Bound     string // how far off the clock can be at the end of sync interval, in ns
	boundExpr *govaluate.EvaluableExpression
	Drift     string // drift in PPB
	driftExpr *govaluate.EvaluableExpression
}

// Prepare will prepare all math expressions
func (m *Math) Prepare() error {
	var err error
	m.boundExpr, err = prepareExpression(m.Bound)
	if err != nil {
		return fmt.Errorf("evaluating Bound: %w", err)
	}
	m.driftExpr, err = prepareExpression(m.Drift)
	if err != nil {
		return fmt.Errorf("evaluating Drift: %w", err)
	}
	return nil
}

func mean(input []float64) float64 {
	s := welford.New()
	for _, v := range input {
		s.Add(v)
	}
	return s.Mean()
}

func variance(input []float64) float64 {
	s := welford.New()
	for _, v := range input {
		s.Add(v)
	}
	return s.Variance()
}

func stddev(input []float64) float64 {
	s := welford.New()
	for _, v := range input {
		s.Add(v)
	}
	return s.Stddev()
}

var supportedVariables = []string{
	"offset",
	"elapsed",
	"driftppb",
	"freq",
	"adjustment",
}

func isSupportedVar(varName string) bool {
	for _, v := range supportedVariables {
		if v == varName {
			return true
		}
	}
	return false
}

// aggregate builds expression function applying f to first 'number' values of a list
func aggregate(name string, f func([]float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: wrong number of arguments: want 2, got %d", name, len(args))
		}
		vals, ok := args[0].([]float64)
		if !ok {
			return nil, fmt.Errorf("%s: first argument must be a list", name)
		}
		nSamples, ok := args[1].(float64)
		if !ok {
			return nil, fmt.Errorf("%s: second argument must be a number", name)
		}
		if len(vals) < int(nSamples) {
			return f(vals), nil
		}
		return f(vals[:int(nSamples)]), nil
	}
}

// all the functions we support in expressions
var functions = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs: wrong number of arguments: want 1, got %d", len(args))
		}
		val, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs: argument must be a number")
		}
		return math.Abs(val), nil
	},
	"mean":     aggregate("mean", mean),
	"variance": aggregate("variance", variance),
	"stddev":   aggregate("stddev", stddev),
}

func prepareExpression(exprStr string) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, functions)
	if err != nil {
		return nil, err
	}
	for _, v := range expr.Vars() {
		if !isSupportedVar(v) {
			return nil, fmt.Errorf("unsupported variable %q", v)
		}
	}
	return expr, nil
}

func prepareMathParameters(lastN []*DataPoint, adjustments []float64) map[string][]float64 {
	size := len(lastN)
	offsets := make([]float64, size)
	elapsed := make([]float64, size)
	drifts := make([]float64, size)
	freqs := make([]float64, size)
	for i, d := range lastN {
		offsets[i] = d.OffsetNS
		elapsed[i] = d.ElapsedNS
		drifts[i] = d.DriftPPB()
		freqs[i] = d.FrequencyHz
	}
	return map[string][]float64{
		"offset":     offsets,
		"elapsed":    elapsed,
		"driftppb":   drifts,
		"freq":       freqs,
		"adjustment": adjustments,
	}
}

func mapOfInterface(m map[string][]float64) map[string]interface{} {
	mm := make(map[string]interface{}, len(m))
	for k, v := range m {
		mm[k] = v
	}
	return mm
}
