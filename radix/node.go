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
	"strings"
	"sync/atomic"
)

// Node is a vertex of the tree. The incoming edge, value and the set of
// outgoing edge labels are fixed at construction; a logically updated node is
// always a new Node swapped into its parent's slot.
//
// A Node with outgoing edges is a branch, otherwise it is a leaf. Both may or
// may not carry a value.
type Node[V any] struct {
	edge     string
	value    V
	hasValue bool
	children *edges[V]

	res reservation[V]
}

// reservation is the coordination state used by writers only. Readers never
// look at it.
type reservation[V any] struct {
	// edit is the last edit that reserved the node. The node is reserved while
	// that edit is in progress.
	edit atomic.Pointer[pendingEdit[V]]

	// retired is set once a committed edit removes the node from the tree. A
	// retired node is never reserved again.
	retired atomic.Bool
}

// newNode returns a leaf when there are no children. The root, which has an
// empty edge, is always a branch.
func newNode[V any](edge string, value V, hasValue bool, children []*Node[V]) *Node[V] {
	n := &Node[V]{edge: edge, value: value, hasValue: hasValue}
	if len(children) > 0 || edge == "" {
		n.children = newEdges(children)
	}
	return n
}

func newLeaf[V any](edge string, value V) *Node[V] {
	return &Node[V]{edge: edge, value: value, hasValue: true}
}

// label is the first byte of the incoming edge. The root's label is 0; it
// only ever occupies the single slot of the tree's holder.
func (n *Node[V]) label() byte {
	if n.edge == "" {
		return 0
	}
	return n.edge[0]
}

// IncomingEdge returns the edge label from the parent to this node.
func (n *Node[V]) IncomingEdge() string {
	return n.edge
}

// Value returns the value stored at this node, if any.
func (n *Node[V]) Value() (V, bool) {
	return n.value, n.hasValue
}

// IsLeaf reports whether the node has no outgoing edges.
func (n *Node[V]) IsLeaf() bool {
	return n.children == nil
}

// OutgoingEdge returns the child whose incoming edge starts with label, or
// nil.
func (n *Node[V]) OutgoingEdge(label byte) *Node[V] {
	if n.children == nil {
		return nil
	}
	return n.children.get(label)
}

// OutgoingEdges returns the current children sorted by label.
func (n *Node[V]) OutgoingEdges() []*Node[V] {
	if n.children == nil {
		return nil
	}
	return n.children.children()
}

// reserved reports whether an edit in progress holds this node.
func (n *Node[V]) reserved() bool {
	e := n.res.edit.Load()
	return e != nil && e.loadState() == editInProgress
}

func (n *Node[V]) String() string {
	var sb strings.Builder
	sb.WriteString("Node{edge=")
	sb.WriteString(n.edge)
	sb.WriteString(", value=")
	if n.hasValue {
		fmt.Fprint(&sb, n.value)
	} else {
		sb.WriteString("<nil>")
	}
	sb.WriteString(", edges=[")
	for i, child := range n.OutgoingEdges() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(child.String())
	}
	sb.WriteString("]}")
	return sb.String()
}
