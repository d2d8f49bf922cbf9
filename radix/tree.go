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
	"log/slog"
)

// Tree is a concurrent, lock-free radix tree.
type Tree[V any] struct {
	// holder is a permanent branch whose single slot refers to the root. It
	// lets the root be replaced through the same edits as any other node.
	holder *Node[V]
	config *Config
	log    *slog.Logger
	stats  *stats
}

// position is where a walk along a key stopped. depth bytes of the key were
// consumed by the ancestors of node and matched bytes of node's edge agree
// with the key after that.
type position[V any] struct {
	grandparent *Node[V]
	parent      *Node[V]
	node        *Node[V]
	depth       int
	matched     int
}

func (p position[V]) end() int {
	return p.depth + p.matched
}

// New creates an empty Tree with the given Config. A nil Config uses
// DefaultConfig.
func New[V any](config *Config) *Tree[V] {
	config = config.withDefaults()
	var zero V
	root := newNode[V]("", zero, false, nil)
	return &Tree[V]{
		holder: &Node[V]{children: newEdges([]*Node[V]{root})},
		config: config,
		log:    config.Logger,
		stats:  newStats(),
	}
}

// Name returns the configured name of the tree.
func (t *Tree[V]) Name() string {
	return t.config.Name
}

// Root returns the current root node. The root has an empty incoming edge.
func (t *Tree[V]) Root() *Node[V] {
	n, _ := t.holder.children.slots[0].load()
	return n
}

// Get returns the value stored for key.
func (t *Tree[V]) Get(key string) (V, bool) {
	var zero V
	n := t.Root()
	depth := 0
	for {
		rest := key[depth:]
		if len(rest) < len(n.edge) || rest[:len(n.edge)] != n.edge {
			return zero, false
		}
		depth += len(n.edge)
		if depth == len(key) {
			return n.Value()
		}
		if n = n.OutgoingEdge(key[depth]); n == nil {
			return zero, false
		}
	}
}

// Put stores value for key. If key was present the previous value is
// returned along with true.
func (t *Tree[V]) Put(key string, value V) (V, bool) {
	for {
		e, previous, replaced, ok := t.prepareInsert(key, value)
		if !ok {
			t.stats.restarts.Inc()
			continue
		}
		if t.help(e) {
			t.stats.commits.Inc()
			return previous, replaced
		}
		t.aborted(e)
	}
}

// Delete removes key. It returns true if a value was removed.
func (t *Tree[V]) Delete(key string) bool {
	for {
		e, found, ok := t.prepareDelete(key)
		if !ok {
			t.stats.restarts.Inc()
			continue
		}
		if !found {
			return false
		}
		if t.help(e) {
			t.stats.commits.Inc()
			return true
		}
		t.aborted(e)
	}
}

func (t *Tree[V]) aborted(e *pendingEdit[V]) {
	t.stats.aborts.Inc()
	t.log.Debug("edit aborted", "tree", t.config.Name, "kind", e.kind, "key", e.key)
}

// locate walks from the root along key and stops at the first node whose
// edge diverges from or extends past the key, or where the key is exhausted,
// or where no child continues the key.
func (t *Tree[V]) locate(key string) position[V] {
	pos := position[V]{parent: t.holder, node: t.Root()}
	for {
		rest := key[pos.depth:]
		pos.matched = commonPrefix(rest, pos.node.edge)
		if pos.matched < len(pos.node.edge) || pos.end() == len(key) {
			return pos
		}
		child := pos.node.OutgoingEdge(key[pos.end()])
		if child == nil {
			return pos
		}
		pos = position[V]{
			grandparent: pos.parent,
			parent:      pos.node,
			node:        child,
			depth:       pos.end(),
		}
	}
}

// prepareInsert decides the edit that stores value under key. ok is false if
// the walk raced with another writer and has to be repeated.
func (t *Tree[V]) prepareInsert(key string, value V) (e *pendingEdit[V], previous V, replaced, ok bool) {
	pos := t.locate(key)
	n := pos.node
	ps, ok := t.snapshotOf(pos.parent)
	if !ok || !ps.has(n) {
		return nil, previous, false, false
	}
	ns, ok := t.snapshotOf(n)
	if !ok {
		return nil, previous, false, false
	}

	var zero V
	var replacement *Node[V]
	switch {
	case pos.matched == len(n.edge) && pos.end() == len(key):
		// The key ends at n.
		previous, replaced = n.value, n.hasValue
		replacement = newNode(n.edge, value, true, ns.children)
	case pos.matched == len(n.edge):
		// n is a prefix of the key and has no child for the rest.
		if ns.child(key[pos.end()]) != nil {
			return nil, previous, false, false
		}
		leaf := newLeaf(key[pos.end():], value)
		replacement = newNode(n.edge, n.value, n.hasValue, append(ns.children, leaf))
	case pos.end() == len(key):
		// The key ends inside n's edge: split it.
		lower := newNode(n.edge[pos.matched:], n.value, n.hasValue, ns.children)
		replacement = newNode(n.edge[:pos.matched], value, true, []*Node[V]{lower})
	default:
		// The key and n's edge share a prefix then differ.
		lower := newNode(n.edge[pos.matched:], n.value, n.hasValue, ns.children)
		leaf := newLeaf(key[pos.end():], value)
		replacement = newNode(n.edge[:pos.matched], zero, false, []*Node[V]{lower, leaf})
	}
	return t.newEdit(editInsert, key, replacement, ps, ns), previous, replaced, true
}

// prepareDelete decides the edit that removes key. found is false if the key
// is not present.
func (t *Tree[V]) prepareDelete(key string) (e *pendingEdit[V], found, ok bool) {
	pos := t.locate(key)
	n := pos.node
	if pos.matched != len(n.edge) || pos.end() != len(key) || !n.hasValue {
		return nil, false, true
	}
	ps, ok := t.snapshotOf(pos.parent)
	if !ok || !ps.has(n) {
		return nil, false, false
	}
	ns, ok := t.snapshotOf(n)
	if !ok {
		return nil, false, false
	}

	var zero V
	switch {
	case n.edge == "" || len(ns.children) >= 2:
		// Keep the branch, drop the value.
		replacement := newNode(n.edge, zero, false, ns.children)
		return t.newEdit(editDelete, key, replacement, ps, ns), true, true
	case len(ns.children) == 1:
		// Merge n with its only child.
		cs, ok := t.snapshotOf(ns.children[0])
		if !ok {
			return nil, false, false
		}
		c := cs.node
		replacement := newNode(n.edge+c.edge, c.value, c.hasValue, cs.children)
		return t.newEdit(editDelete, key, replacement, ps, ns, cs), true, true
	}

	// n is a leaf: its parent is rebuilt without the slot.
	p := pos.parent
	gs, ok := t.snapshotOf(pos.grandparent)
	if !ok || !gs.has(p) {
		return nil, false, false
	}
	siblings := ps.without(n)
	switch {
	case p.edge == "" || p.hasValue || len(siblings) >= 2:
		replacement := newNode(p.edge, p.value, p.hasValue, siblings)
		return t.newEdit(editDelete, key, replacement, gs, ps, ns), true, true
	case len(siblings) == 1:
		// p is left with a single child and no value: merge them.
		ss, ok := t.snapshotOf(siblings[0])
		if !ok {
			return nil, false, false
		}
		s := ss.node
		replacement := newNode(p.edge+s.edge, s.value, s.hasValue, ss.children)
		if s.label() < n.label() {
			return t.newEdit(editDelete, key, replacement, gs, ps, ss, ns), true, true
		}
		return t.newEdit(editDelete, key, replacement, gs, ps, ns, ss), true, true
	default:
		panic(fmt.Sprintf("radix: branch without value has a single child: %s", p))
	}
}

// commonPrefix returns the length of the longest common prefix of a and b.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
