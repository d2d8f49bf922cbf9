/*
Copyright 2015 Workiva

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

package radix

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stall publishes e on its first n reserved nodes and stops there, as a
// writer preempted in the middle of help would.
func stall[V any](t *testing.T, e *pendingEdit[V], n int) {
	for i := range n {
		require.True(t, e.reserve[i].res.edit.CompareAndSwap(e.seen[i], e))
	}
}

func TestStalledEditCompletedByWriter(t *testing.T) {
	assert := assert.New(t)
	var logs bytes.Buffer
	tree := New[int](&Config{
		Name:   "stalled",
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	tree.Put("test", 1)

	e, _, _, ok := tree.prepareInsert("tester", 2)
	require.True(t, ok)
	stall(t, e, 1)
	assert.True(tree.Root().reserved())
	assert.Error(tree.Validate())

	// Readers never help.
	_, ok = tree.Get("tester")
	assert.False(ok)
	assert.Equal(editInProgress, e.loadState())

	tree.Put("team", 3)

	assert.Equal(editCommitted, e.loadState())
	for key, want := range map[string]int{"test": 1, "tester": 2, "team": 3} {
		v, ok := tree.Get(key)
		assert.True(ok, key)
		assert.Equal(want, v, key)
	}
	require.NoError(t, tree.Validate())

	stats := tree.Stats()
	assert.Equal(int64(1), stats.Helps)
	assert.Equal(int64(1), stats.Restarts)
	assert.Equal(int64(2), stats.Commits)
	assert.Contains(logs.String(), "helping pending edit")
	assert.Contains(logs.String(), "tree=stalled")
	assert.Contains(logs.String(), "key=tester")
}

func TestStalledDeleteCompletedByWriter(t *testing.T) {
	assert := assert.New(t)
	tree := New[int](nil)
	tree.Put("test", 1)
	tree.Put("tester", 2)
	tree.Put("team", 3)

	e, found, ok := tree.prepareDelete("team")
	require.True(t, ok)
	require.True(t, found)
	require.Len(t, e.reserve, 4)

	// Every node is reserved and the removed ones retired, but the parent
	// slot was never swapped.
	stall(t, e, len(e.reserve))
	e.reservedAll.Store(true)
	for _, n := range e.reserve[1:] {
		n.res.retired.Store(true)
	}
	v, ok := tree.Get("team")
	assert.True(ok)
	assert.Equal(3, v)

	assert.True(tree.Delete("tester"))

	assert.Equal(editCommitted, e.loadState())
	_, ok = tree.Get("team")
	assert.False(ok)
	_, ok = tree.Get("tester")
	assert.False(ok)
	v, ok = tree.Get("test")
	assert.True(ok)
	assert.Equal(1, v)
	assert.True(tree.Root().OutgoingEdge('t').IsLeaf())
	require.NoError(t, tree.Validate())
}

func TestConcurrentHelpersInstallOnce(t *testing.T) {
	assert := assert.New(t)
	tree := New[int](nil)
	tree.Put("test", 1)

	e, _, _, ok := tree.prepareInsert("team", 3)
	require.True(t, ok)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = tree.help(e)
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.True(r)
	}
	assert.Equal(editCommitted, e.loadState())
	assert.Same(e.replacement, tree.Root().OutgoingEdge('t'))
	v, ok := tree.Get("team")
	assert.True(ok)
	assert.Equal(3, v)
	require.NoError(t, tree.Validate())
}

func TestConflictingEditAborts(t *testing.T) {
	assert := assert.New(t)
	tree := New[int](nil)
	tree.Put("test", 1)

	e, _, _, ok := tree.prepareInsert("tester", 2)
	require.True(t, ok)

	// A conflicting write lands between the read and the reservation.
	tree.Put("toast", 5)

	assert.False(tree.help(e))
	assert.Equal(editAborted, e.loadState())
	assert.False(tree.Root().reserved())
	_, ok = tree.Get("tester")
	assert.False(ok)
	require.NoError(t, tree.Validate())

	// The aborted edit leaves nothing reserved behind.
	tree.Put("tester", 2)
	v, ok := tree.Get("tester")
	assert.True(ok)
	assert.Equal(2, v)
	require.NoError(t, tree.Validate())
}

func TestRetiredNodeCannotBeReserved(t *testing.T) {
	assert := assert.New(t)
	tree := New[int](nil)
	tree.Put("test", 1)
	old := tree.Root().OutgoingEdge('t')

	tree.Put("test", 2)
	assert.True(old.res.retired.Load())

	_, ok := tree.snapshotOf(old)
	assert.False(ok)
	_, ok = tree.snapshotOf(tree.Root())
	assert.True(ok)
}
