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
package shm

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func testData() *Data {
	return &Data{
		AnchorCycles: 123456789,
		AnchorUnits:  16481372490506663,
		FrequencyHz:  2400000000,
		Precision:    10000000,
		ErrorBoundNS: 314000,
		PublishedNS:  1648137249050666302,
	}
}

func TestShmem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(DataSize), fi.Size())
	require.Equal(t, os.FileMode(0644), fi.Mode().Perm())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Load()
	require.ErrorIs(t, err, ErrNoData)

	d := testData()
	require.NoError(t, w.Store(d))
	require.Equal(t, uint64(2), r.Sequence())

	got, err := r.Load()
	require.NoError(t, err)
	require.Equal(t, d, got)

	d.ErrorBoundNS = 42
	require.NoError(t, w.Store(d))
	got, err = r.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.ErrorBoundNS)
	require.Equal(t, uint64(4), r.Sequence())
}

func TestShmemChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Store(testData()))

	// corrupt anchor behind the sequence counter
	*w.word(2)++
	_, err = w.Load()
	require.ErrorIs(t, err, ErrChecksum)
}

func TestShmemBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Store(testData()))

	// writer died in the middle of an update
	*w.word(0)++
	_, err = w.Load()
	require.ErrorIs(t, err, ErrBusy)
	require.Error(t, w.Store(testData()))
}

func TestShmemWriterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Store(testData()))
	// writer died in the middle of an update
	*w.word(0) = 3
	*w.word(2)++
	require.NoError(t, w.Close())

	w, err = Create(path)
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, uint64(4), w.Sequence())
	_, err = w.Load()
	require.ErrorIs(t, err, ErrChecksum)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	d := testData()
	for i := 0; i < 3; i++ {
		d.ErrorBoundNS = uint64(i)
		require.NoError(t, w.Store(d))
		got, err := r.Load()
		require.NoError(t, err)
		require.Equal(t, d, got)
	}
	require.Equal(t, uint64(10), r.Sequence())
}

func TestShmemOpenShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrNoData)

	_, err = Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestShmemConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmemtest")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, w.Store(testData()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d := testData()
		for i := 0; i < 10000; i++ {
			d.AnchorCycles++
			d.AnchorUnits++
			_ = w.Store(d)
		}
	}()
	for i := 0; i < 10000; i++ {
		got, err := r.Load()
		if err == ErrBusy {
			continue
		}
		require.NoError(t, err)
		require.Equal(t, got.AnchorCycles-123456789, got.AnchorUnits-16481372490506663)
	}
	wg.Wait()
}

func TestDataNow(t *testing.T) {
	d := testData()
	got, err := d.Now(d.AnchorCycles + 2400000000)
	require.NoError(t, err)
	require.Equal(t, d.AnchorUnits+10000000, got)

	_, err = d.Now(d.AnchorCycles + 1<<62)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = (&Data{}).Now(1)
	require.ErrorIs(t, err, ErrNoData)
}

func TestDataDump(t *testing.T) {
	out := testData().Dump()
	require.Contains(t, out, "FrequencyHz: (uint64) 2400000000")
	require.Contains(t, out, "AnchorCycles: (uint64) 123456789")
}
