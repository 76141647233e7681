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
package refclock

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRealtime(t *testing.T) {
	before := time.Now()
	now, err := Realtime{}.Now()
	require.NoError(t, err)
	after := time.Now()
	require.False(t, now.Before(before.Add(-time.Millisecond)))
	require.False(t, now.After(after.Add(time.Millisecond)))
}

func TestMonotonicRaw(t *testing.T) {
	a, err := MonotonicRaw{}.Now()
	if runtime.GOOS != "linux" {
		require.ErrorIs(t, err, ErrUnsupported)
		return
	}
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	b, err := MonotonicRaw{}.Now()
	require.NoError(t, err)
	require.True(t, b.After(a))
}

func TestFunc(t *testing.T) {
	want := time.Unix(1667818190, 552297411)
	var c Clock = Func(func() (time.Time, error) { return want, nil })
	got, err := c.Now()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStatusRealtime(t *testing.T) {
	d, err := Status(ClockRealtime)
	if runtime.GOOS != "linux" {
		require.ErrorIs(t, err, ErrUnsupported)
		return
	}
	if err != nil {
		t.Skipf("clock_adjtime is not permitted here: %v", err)
	}
	require.GreaterOrEqual(t, d.State, StateOK)
	require.LessOrEqual(t, d.State, StateError)
}

func TestDiscipline(t *testing.T) {
	d := &Discipline{State: StateOK}
	require.True(t, d.Synchronized())
	require.Equal(t, "TIME_OK", d.StateString())

	// leap second pending or in progress is still synchronized
	d.State = StateIns
	require.True(t, d.Synchronized())
	d.State = StateDel
	require.True(t, d.Synchronized())
	d.State = StateOOP
	require.True(t, d.Synchronized())

	d.State = StateError
	require.False(t, d.Synchronized())
	require.Equal(t, "TIME_ERROR", d.StateString())

	d.State = 42
	require.Equal(t, "UNSUPPORTED", d.StateString())
}
