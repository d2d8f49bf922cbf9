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
	"fmt"
	"sort"
	"sync/atomic"
)

const (
	stampClear    int32 = 0
	stampReserved int32 = 1
)

// stamped is an immutable (child, stamp) pair. A slot swaps whole pairs so the
// reference and its stamp are always observed together.
type stamped[V any] struct {
	node  *Node[V]
	stamp int32
}

// edgeSlot is a single atomically updatable (child, stamp) pair.
type edgeSlot[V any] struct {
	pair atomic.Pointer[stamped[V]]
}

func (s *edgeSlot[V]) load() (*Node[V], int32) {
	p := s.pair.Load()
	return p.node, p.stamp
}

func (s *edgeSlot[V]) store(n *Node[V], stamp int32) {
	s.pair.Store(&stamped[V]{node: n, stamp: stamp})
}

// compareAndSet replaces the pair only if the current child and stamp are
// expected and expectedStamp.
func (s *edgeSlot[V]) compareAndSet(expected, n *Node[V], expectedStamp, newStamp int32) bool {
	cur := s.pair.Load()
	if cur.node != expected || cur.stamp != expectedStamp {
		return false
	}
	if cur.node == n && cur.stamp == newStamp {
		return true
	}
	return s.pair.CompareAndSwap(cur, &stamped[V]{node: n, stamp: newStamp})
}

// attemptStamp sets the stamp if the slot still refers to expected.
func (s *edgeSlot[V]) attemptStamp(expected *Node[V], newStamp int32) bool {
	cur := s.pair.Load()
	if cur.node != expected {
		return false
	}
	if cur.stamp == newStamp {
		return true
	}
	return s.pair.CompareAndSwap(cur, &stamped[V]{node: expected, stamp: newStamp})
}

// edges is the outgoing edge array of a branch node. The set of labels is
// fixed when the array is built and kept sorted so lookups can binary search
// without coordinating with writers; only the slots change afterwards.
type edges[V any] struct {
	labels []byte
	slots  []edgeSlot[V]
}

// newEdges builds the array from the complete child list. Children must have
// pairwise distinct labels.
func newEdges[V any](children []*Node[V]) *edges[V] {
	sorted := make([]*Node[V], len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].label() < sorted[j].label()
	})

	e := &edges[V]{
		labels: make([]byte, len(sorted)),
		slots:  make([]edgeSlot[V], len(sorted)),
	}
	for i, child := range sorted {
		if i > 0 && e.labels[i-1] == child.label() {
			panic(fmt.Sprintf("radix: duplicate outgoing edge for label %q", child.label()))
		}
		e.labels[i] = child.label()
		e.slots[i].store(child, stampClear)
	}
	return e
}

func (e *edges[V]) size() int {
	return len(e.labels)
}

// index returns the slot index for label or -1.
func (e *edges[V]) index(label byte) int {
	i := sort.Search(len(e.labels), func(i int) bool {
		return e.labels[i] >= label
	})
	if i < len(e.labels) && e.labels[i] == label {
		return i
	}
	return -1
}

// mustIndex is index for callers that guarantee the slot exists.
func (e *edges[V]) mustIndex(child *Node[V]) int {
	i := e.index(child.label())
	if i < 0 {
		panic(fmt.Sprintf(
			"radix: cannot update the reference to the child node for the edge starting with %q, no such edge already exists: %s",
			child.label(), child))
	}
	return i
}

// get returns the child whose incoming edge starts with label.
func (e *edges[V]) get(label byte) *Node[V] {
	i := e.index(label)
	if i < 0 {
		return nil
	}
	n, _ := e.slots[i].load()
	return n
}

// getStamped is get plus the stamp read from the same snapshot.
func (e *edges[V]) getStamped(label byte) (*Node[V], int32, bool) {
	i := e.index(label)
	if i < 0 {
		return nil, stampClear, false
	}
	n, stamp := e.slots[i].load()
	return n, stamp, true
}

// update unconditionally replaces the child with the same label and clears
// the stamp. It panics when no such slot exists.
func (e *edges[V]) update(child *Node[V]) {
	e.slots[e.mustIndex(child)].store(child, stampClear)
}

// compareAndSwap installs child in the slot of its label if the slot holds
// (expected, expectedStamp). It panics when no such slot exists.
func (e *edges[V]) compareAndSwap(expected, child *Node[V], expectedStamp, newStamp int32) bool {
	return e.slots[e.mustIndex(child)].compareAndSet(expected, child, expectedStamp, newStamp)
}

// attemptStamp tags the slot holding child without changing the reference.
func (e *edges[V]) attemptStamp(child *Node[V], newStamp int32) bool {
	i := e.index(child.label())
	if i < 0 {
		return false
	}
	return e.slots[i].attemptStamp(child, newStamp)
}

// setStamp tags the slot for child's label with newStamp, keeping whatever
// reference the slot currently holds.
func (e *edges[V]) setStamp(child *Node[V], newStamp int32) {
	s := &e.slots[e.mustIndex(child)]
	for {
		cur := s.pair.Load()
		if cur.stamp == newStamp ||
			s.pair.CompareAndSwap(cur, &stamped[V]{node: cur.node, stamp: newStamp}) {
			return
		}
	}
}

func (e *edges[V]) hasAnyStampedChild() bool {
	for i := range e.slots {
		if _, stamp := e.slots[i].load(); stamp != stampClear {
			return true
		}
	}
	return false
}

// children returns the current children in label order.
func (e *edges[V]) children() []*Node[V] {
	nodes := make([]*Node[V], len(e.slots))
	for i := range e.slots {
		nodes[i], _ = e.slots[i].load()
	}
	return nodes
}
