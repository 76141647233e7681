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
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"
)

// LogSample has all the measurements we may want to log
type LogSample struct {
	OffsetNS        float64
	OffsetMeanNS    float64
	OffsetStddevNS  float64
	ElapsedNS       float64
	DriftPPB        float64
	DriftMeanPPB    float64
	DriftStddevPPB  float64
	FrequencyHz     float64
	AdjustmentHz    float64
	BoundNS         float64
	CalculatedDrift float64
}

var header = []string{
	"offset",
	"offset_mean",
	"offset_stddev",
	"elapsed",
	"drift",
	"drift_mean",
	"drift_stddev",
	"freq",
	"adjustment",
	"bound",
	"calculated_drift",
}

// CSVRecords returns all data from this sample as CSV. Must by synced with `header` variable.
func (s *LogSample) CSVRecords() []string {
	return []string{
		strconv.FormatFloat(s.OffsetNS, 'f', -1, 64),
		strconv.FormatFloat(s.OffsetMeanNS, 'f', -1, 64),
		strconv.FormatFloat(s.OffsetStddevNS, 'f', -1, 64),
		strconv.FormatFloat(s.ElapsedNS, 'f', -1, 64),
		strconv.FormatFloat(s.DriftPPB, 'f', -1, 64),
		strconv.FormatFloat(s.DriftMeanPPB, 'f', -1, 64),
		strconv.FormatFloat(s.DriftStddevPPB, 'f', -1, 64),
		strconv.FormatFloat(s.FrequencyHz, 'f', -1, 64),
		strconv.FormatFloat(s.AdjustmentHz, 'f', -1, 64),
		strconv.FormatFloat(s.BoundNS, 'f', -1, 64),
		strconv.FormatFloat(s.CalculatedDrift, 'f', -1, 64),
	}
}

// Logger is something that can store LogSample somewhere
type Logger interface {
	Log(*LogSample) error
}

// shouldLog tells whether to log a sample when we log one of every sampleRate
func shouldLog(sampleRate int) bool {
	if sampleRate <= 0 {
		return false
	}
	return rand.Intn(sampleRate) == 0
}

// CSVLogger logs Sample as CSV into given writer
type CSVLogger struct {
	csvwriter     *csv.Writer
	printedHeader bool
	sampleRate    int
}

// NewCSVLogger returns new CSVLogger logging one of every sampleRate samples
func NewCSVLogger(w io.Writer, sampleRate int) *CSVLogger {
	return &CSVLogger{
		csvwriter:  csv.NewWriter(w),
		sampleRate: sampleRate,
	}
}

// Log implements Logger interface
func (l *CSVLogger) Log(s *LogSample) error {
	if !shouldLog(l.sampleRate) {
		return nil
	}
	if !l.printedHeader {
		if err := l.csvwriter.Write(header); err != nil {
			return err
		}
		l.printedHeader = true
	}
	csv := s.CSVRecords()
	if err := l.csvwriter.Write(csv); err != nil {
		return err
	}
	l.csvwriter.Flush()
	return l.csvwriter.Error()
}

// DummyLogger logs offset and bound to given writer
type DummyLogger struct {
	w io.Writer
}

// NewDummyLogger returns new DummyLogger
func NewDummyLogger(w io.Writer) *DummyLogger {
	return &DummyLogger{w: w}
}

// Log implements Logger interface
func (l *DummyLogger) Log(s *LogSample) error {
	_, err := fmt.Fprintf(l.w, "offset = %v, bound = %v\n", time.Duration(s.OffsetNS), time.Duration(s.BoundNS))
	return err
}
