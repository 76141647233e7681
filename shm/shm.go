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
/*
Package shm publishes clock state to a memory mapped file.

Daemon keeps the file up to date, any number of processes can map it and compute
time from their own cycle counter reads without talking to the daemon.
Layout is a sequence of native endian 64-bit words:

	0: sequence, odd while an update is in progress
	1: anchor cycles
	2: anchor time in units
	3: cycle counter frequency in Hz
	4: precision in units per second
	5: error bound in nanoseconds
	6: time of publication in nanoseconds since Unix epoch
	7: xxhash of words 1 to 6
*/
package shm

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sys/unix"
)

// DefaultPath is where daemon publishes clock state by default
const DefaultPath = "/run/hptl_shmem"

const (
	dataWords = 8
	// DataSize is the size of shared memory in bytes
	DataSize = dataWords * 8
	// readers retry this many times while the writer is busy
	maxReadRetries = 1000
)

var (
	// ErrBusy means writer kept updating the data while we tried to read it
	ErrBusy = fmt.Errorf("shared memory is being updated")
	// ErrChecksum means data doesn't match its checksum
	ErrChecksum = fmt.Errorf("shared memory checksum mismatch")
	// ErrNoData means nothing was published yet
	ErrNoData = fmt.Errorf("no data published")
	// ErrOverflow means the cycle delta is too large for the published anchor
	ErrOverflow = fmt.Errorf("cycle delta overflow, data is stale")
)

// Data is what we store in shared memory
type Data struct {
	AnchorCycles uint64
	AnchorUnits  uint64
	FrequencyHz  uint64
	Precision    uint64
	ErrorBoundNS uint64
	PublishedNS  uint64
}

func (d *Data) words() [dataWords - 2]uint64 {
	return [dataWords - 2]uint64{d.AnchorCycles, d.AnchorUnits, d.FrequencyHz, d.Precision, d.ErrorBoundNS, d.PublishedNS}
}

// Checksum returns xxhash of the data
func (d *Data) Checksum() uint64 {
	var b [(dataWords - 2) * 8]byte
	for i, w := range d.words() {
		binary.LittleEndian.PutUint64(b[i*8:], w)
	}
	return xxhash.Sum64(b[:])
}

// Now returns time in units at given cycle counter value
func (d *Data) Now(cycles uint64) (uint64, error) {
	if d.FrequencyHz == 0 {
		return 0, ErrNoData
	}
	hi, lo := bits.Mul64(cycles-d.AnchorCycles, d.Precision)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo/d.FrequencyHz + d.AnchorUnits, nil
}

// Dump returns human readable representation of the data
func (d *Data) Dump() string {
	return spew.Sdump(d)
}

// Shm is a memory mapped file with clock data
type Shm struct {
	Path string
	File *os.File
	mem  []byte
}

func (s *Shm) word(i int) *uint64 {
	return (*uint64)(unsafe.Pointer(&s.mem[i*8]))
}

// OpenShm opens and maps shared memory file
func OpenShm(path string, flags int, permissions os.FileMode) (*Shm, error) {
	// otherwise our creating flags might be affected by umask
	// and shmem won't be readable by all users
	oldUmask := unix.Umask(0)
	defer unix.Umask(oldUmask)
	file, err := os.OpenFile(path, flags, permissions)
	if err != nil {
		return nil, err
	}
	prot := unix.PROT_READ
	if flags&(os.O_RDWR|os.O_WRONLY) != 0 {
		prot |= unix.PROT_WRITE
		if err := file.Truncate(DataSize); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		// mapping past the end of file faults on first access
		fi, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, err
		}
		if fi.Size() < DataSize {
			file.Close()
			return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrNoData, path, fi.Size(), DataSize)
		}
	}
	mem, err := unix.Mmap(int(file.Fd()), 0, DataSize, prot, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Shm{Path: path, File: file, mem: mem}, nil
}

// Create opens shared memory for publishing.
// The caller becomes the only writer: an update left unfinished by a previous writer is abandoned.
func Create(path string) (*Shm, error) {
	s, err := OpenShm(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if seq := s.Sequence(); seq%2 != 0 {
		// a partially written update fails checksum until the next Store
		atomic.StoreUint64(s.word(0), seq+1)
	}
	return s, nil
}

// Open opens shared memory for reading
func Open(path string) (*Shm, error) {
	return OpenShm(path, os.O_RDONLY, 0)
}

// Close unmaps and closes shared memory
func (s *Shm) Close() error {
	if err := unix.Munmap(s.mem); err != nil {
		return err
	}
	return s.File.Close()
}

// Store publishes data. Only one process may store at a time.
func (s *Shm) Store(d *Data) error {
	seq := atomic.LoadUint64(s.word(0))
	if seq%2 != 0 {
		return fmt.Errorf("sequence %d is odd, another writer?", seq)
	}
	atomic.StoreUint64(s.word(0), seq+1)
	for i, w := range d.words() {
		atomic.StoreUint64(s.word(i+1), w)
	}
	atomic.StoreUint64(s.word(dataWords-1), d.Checksum())
	atomic.StoreUint64(s.word(0), seq+2)
	return nil
}

// Load reads consistent snapshot of the data
func (s *Shm) Load() (*Data, error) {
	for i := 0; i < maxReadRetries; i++ {
		seq := atomic.LoadUint64(s.word(0))
		if seq == 0 {
			return nil, ErrNoData
		}
		if seq%2 != 0 {
			continue
		}
		d := &Data{
			AnchorCycles: atomic.LoadUint64(s.word(1)),
			AnchorUnits:  atomic.LoadUint64(s.word(2)),
			FrequencyHz:  atomic.LoadUint64(s.word(3)),
			Precision:    atomic.LoadUint64(s.word(4)),
			ErrorBoundNS: atomic.LoadUint64(s.word(5)),
			PublishedNS:  atomic.LoadUint64(s.word(6)),
		}
		sum := atomic.LoadUint64(s.word(7))
		if atomic.LoadUint64(s.word(0)) != seq {
			continue
		}
		if sum != d.Checksum() {
			return nil, ErrChecksum
		}
		return d, nil
	}
	return nil, ErrBusy
}

// Sequence returns current sequence number, which is twice the number of updates
func (s *Shm) Sequence() uint64 {
	return atomic.LoadUint64(s.word(0))
}
