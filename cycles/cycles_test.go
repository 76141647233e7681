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

package cycles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadNonDecreasing(t *testing.T) {
	prev := Read()
	for i := 0; i < 1000; i++ {
		cur := Read()
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestReadAdvances(t *testing.T) {
	a := ReadOrdered()
	time.Sleep(10 * time.Millisecond)
	b := ReadOrdered()
	require.Greater(t, b, a)
}

func TestSources(t *testing.T) {
	var s Source = Counter{}
	require.NotZero(t, s.Cycles())
	s = OrderedCounter{}
	require.NotZero(t, s.Cycles())

	n := uint64(41)
	s = Func(func() uint64 { n++; return n })
	require.Equal(t, uint64(42), s.Cycles())
	require.Equal(t, uint64(43), s.Cycles())
	require.NotEmpty(t, Name)
}
