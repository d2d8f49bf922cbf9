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
	"io"

	"github.com/xlab/treeprint"
)

// Dump writes one line per node: the incoming edge, followed by the value in
// parentheses if the node has one. The root is shown as ○.
//
//	○
//	└── te
//	    ├── am (3)
//	    └── st (1)
//	        └── er (2)
func (t *Tree[V]) Dump(w io.Writer) error {
	_, err := io.WriteString(w, t.String())
	return err
}

func (t *Tree[V]) String() string {
	root := t.Root()
	tree := treeprint.NewWithRoot(nodeLabel(root))
	dumpChildren(tree, root)
	return tree.String()
}

func dumpChildren[V any](tree treeprint.Tree, n *Node[V]) {
	for _, child := range n.OutgoingEdges() {
		if child.IsLeaf() {
			tree.AddNode(nodeLabel(child))
			continue
		}
		dumpChildren(tree.AddBranch(nodeLabel(child)), child)
	}
}

func nodeLabel[V any](n *Node[V]) string {
	label := n.edge
	if label == "" {
		label = "○"
	}
	if n.hasValue {
		label += fmt.Sprintf(" (%v)", n.value)
	}
	return label
}
