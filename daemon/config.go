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
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/hptl/clock"
	"github.com/facebook/hptl/shm"
)

// Config represents configuration we expect to read from file
type Config struct {
	Clock               clock.Config  // cycle counter clock settings
	SyncInterval        time.Duration // how often we measure offset, re-anchor and update shm
	CalibrationInterval time.Duration // how often we calibrate frequency, 0 disables calibration
	CalibrationDelay    int64         // constant delay of reading the reference, in clock units
	RingSize            int           // must be at least the size of N samples we use in expressions
	Math                Math          // configuration for calculation we'll be doing
	ShmPath             string        // where to publish clock state, empty disables publishing
}

// DefaultConfig returns Config with default values
func DefaultConfig() *Config {
	return &Config{
		Clock:               *clock.DefaultConfig(),
		SyncInterval:        time.Second,
		CalibrationInterval: time.Minute,
		RingSize:            MathDefaultHistory,
		Math: Math{
			Bound: MathDefaultBound,
			Drift: MathDefaultDrift,
		},
		ShmPath: shm.DefaultPath,
	}
}

// EvalAndValidate makes sure config is valid and evaluates expressions for further use.
func (c *Config) EvalAndValidate() error {
	if err := c.Clock.Validate(); err != nil {
		return err
	}
	if c.RingSize <= 0 {
		return fmt.Errorf("bad config: 'ringsize' must be >0")
	}
	if c.SyncInterval <= 0 || c.SyncInterval > time.Minute {
		return fmt.Errorf("bad config: 'syncinterval' must be between 0 and 1 minute")
	}
	if c.CalibrationInterval < 0 {
		return fmt.Errorf("bad config: 'calibrationinterval' must be non-negative")
	}
	if c.CalibrationInterval > 0 && c.CalibrationInterval < c.SyncInterval {
		return fmt.Errorf("bad config: 'calibrationinterval' must not be shorter than 'syncinterval'")
	}
	if err := c.Math.Prepare(); err != nil {
		return err
	}
	return nil
}

// ReadConfig reads config and unmarshals it from yaml into Config.
// Options missing in the file keep their default values.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
