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

import "sync/atomic"

type editKind uint8

const (
	editInsert editKind = iota + 1
	editDelete
)

func (k editKind) String() string {
	switch k {
	case editInsert:
		return "insert"
	case editDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type editState int32

const (
	editInProgress editState = iota
	editCommitted
	editAborted
)

// pendingEdit is a decided replacement of one node in its parent's slot. It
// is published on every node it reserves, so any thread that runs into one
// of them can finish the swap on the owner's behalf.
//
// reserve lists the nodes the edit depends on, top-down: reserve[0] is the
// parent whose slot changes and reserve[1] is the installed node. Every node
// but the parent leaves the tree when the edit commits. seen[i] is the edit
// observed on reserve[i] when its snapshot was taken.
type pendingEdit[V any] struct {
	kind        editKind
	key         string
	replacement *Node[V]
	reserve     []*Node[V]
	seen        []*pendingEdit[V]

	state       atomic.Int32
	reservedAll atomic.Bool
}

func (e *pendingEdit[V]) loadState() editState {
	if e == nil {
		return editCommitted
	}
	return editState(e.state.Load())
}

func (e *pendingEdit[V]) parent() *Node[V] {
	return e.reserve[0]
}

func (e *pendingEdit[V]) installed() *Node[V] {
	return e.reserve[1]
}

// snapshot is a consistent read of a node's children together with the edit
// observed on the node. An edit built from snapshots can only reserve the
// node if nothing changed it since.
type snapshot[V any] struct {
	node     *Node[V]
	seen     *pendingEdit[V]
	children []*Node[V]
}

// has reports whether child was in the node's slots at snapshot time.
func (s snapshot[V]) has(child *Node[V]) bool {
	for _, c := range s.children {
		if c == child {
			return true
		}
	}
	return false
}

// child returns the child with the given label at snapshot time.
func (s snapshot[V]) child(label byte) *Node[V] {
	for _, c := range s.children {
		if c.label() == label {
			return c
		}
	}
	return nil
}

// without returns the snapshot's children minus child.
func (s snapshot[V]) without(child *Node[V]) []*Node[V] {
	rest := make([]*Node[V], 0, len(s.children))
	for _, c := range s.children {
		if c != child {
			rest = append(rest, c)
		}
	}
	return rest
}

// snapshotOf reads n for use in an edit. It fails when n is retired or
// changed during the read, and when n is reserved by an edit in progress, in
// which case that edit is helped first. Callers restart on failure.
func (t *Tree[V]) snapshotOf(n *Node[V]) (snapshot[V], bool) {
	seen := n.res.edit.Load()
	state := seen.loadState()
	if state == editAborted || (state == editCommitted && !n.res.retired.Load()) {
		var children []*Node[V]
		if n.children != nil {
			children = n.children.children()
		}
		if n.res.edit.Load() == seen {
			return snapshot[V]{node: n, seen: seen, children: children}, true
		}
	}
	if seen.loadState() == editInProgress {
		t.stats.helps.Inc()
		t.log.Debug("helping pending edit", "tree", t.config.Name,
			"kind", seen.kind, "key", seen.key)
		t.help(seen)
	}
	return snapshot[V]{}, false
}

func (t *Tree[V]) newEdit(kind editKind, key string, replacement *Node[V], snaps ...snapshot[V]) *pendingEdit[V] {
	e := &pendingEdit[V]{
		kind:        kind,
		key:         key,
		replacement: replacement,
		reserve:     make([]*Node[V], len(snaps)),
		seen:        make([]*pendingEdit[V], len(snaps)),
	}
	for i, s := range snaps {
		e.reserve[i] = s.node
		e.seen[i] = s.seen
	}
	return e
}

// help drives e to completion: reserve every node in order, retire the
// removed ones, then swap the replacement into the parent's slot. It is safe
// to run from any number of threads at once. It returns false if e was
// aborted because some node changed after it was read.
func (t *Tree[V]) help(e *pendingEdit[V]) bool {
	for i, n := range e.reserve {
		if !n.res.edit.CompareAndSwap(e.seen[i], e) && n.res.edit.Load() != e {
			if e.reservedAll.Load() {
				return true
			}
			e.state.Store(int32(editAborted))
			return false
		}
	}
	e.reservedAll.Store(true)
	for _, n := range e.reserve[1:] {
		n.res.retired.Store(true)
	}

	slots := e.parent().children
	slots.attemptStamp(e.installed(), stampReserved)
	slots.compareAndSwap(e.installed(), e.replacement, stampReserved, stampClear)

	e.state.Store(int32(editCommitted))
	return true
}
