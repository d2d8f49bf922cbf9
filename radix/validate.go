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
	"errors"
	"fmt"
)

// InvariantError describes a structural invariant violated at the node
// reached by Path.
type InvariantError struct {
	Path   string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("radix: node %q: %s", e.Path, e.Reason)
}

// Validate checks the structure reachable from the current root:
//
//   - only the root has an empty incoming edge
//   - outgoing edges are sorted by label without duplicates, and every slot
//     holds a child with the slot's label
//   - a branch without a value has at least two children
//   - no slot is stamped and no node is reserved or retired
//
// The last check only holds while no writer is active.
func (t *Tree[V]) Validate() error {
	var errs []error
	root := t.Root()
	if root.edge != "" {
		errs = append(errs, &InvariantError{Path: root.edge, Reason: "root has a non-empty edge"})
	}
	if root.children == nil {
		errs = append(errs, &InvariantError{Reason: "root is a leaf"})
	}
	validateNode(root, "", true, &errs)
	return errors.Join(errs...)
}

func validateNode[V any](n *Node[V], prefix string, isRoot bool, errs *[]error) {
	path := prefix + n.edge
	fail := func(format string, args ...any) {
		*errs = append(*errs, &InvariantError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}

	if !isRoot && n.edge == "" {
		fail("empty incoming edge")
	}
	if n.reserved() {
		fail("reserved by an edit in progress")
	}
	if n.res.retired.Load() {
		fail("retired node is reachable")
	}
	if n.children == nil {
		return
	}

	e := n.children
	if e.hasAnyStampedChild() {
		fail("stamped outgoing edge")
	}
	if !isRoot {
		switch {
		case e.size() == 0:
			fail("branch without outgoing edges")
		case !n.hasValue && e.size() < 2:
			fail("branch without value has %d outgoing edges", e.size())
		}
	}
	for i, child := range e.children() {
		if i > 0 && e.labels[i-1] >= e.labels[i] {
			fail("outgoing edges not sorted at %q", e.labels[i])
		}
		if child.label() != e.labels[i] {
			fail("slot %q holds child with edge %q", e.labels[i], child.edge)
		}
		validateNode(child, path, false, errs)
	}
}
