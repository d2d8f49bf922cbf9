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

// Walk calls fn for every stored key in byte order until fn returns false.
// It reads the tree the way Get does and sees each node as of the moment it
// was reached, so under concurrent writes the result is not a snapshot.
func (t *Tree[V]) Walk(fn func(key string, value V) bool) {
	walk(t.Root(), "", fn)
}

func walk[V any](n *Node[V], prefix string, fn func(string, V) bool) bool {
	key := prefix + n.edge
	if n.hasValue && !fn(key, n.value) {
		return false
	}
	for _, child := range n.OutgoingEdges() {
		if !walk(child, key, fn) {
			return false
		}
	}
	return true
}

// Len counts the stored keys.
func (t *Tree[V]) Len() int {
	count := 0
	t.Walk(func(string, V) bool {
		count++
		return true
	})
	return count
}
