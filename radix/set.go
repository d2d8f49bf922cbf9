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

// Set is a concurrent set of string keys backed by a Tree whose nodes carry
// no payload.
type Set struct {
	tree *Tree[struct{}]
}

// NewSet creates an empty Set with the given Config.
func NewSet(config *Config) *Set {
	return &Set{tree: New[struct{}](config)}
}

// Add inserts key and reports whether it was not already present.
func (s *Set) Add(key string) bool {
	_, replaced := s.tree.Put(key, struct{}{})
	return !replaced
}

// Contains reports whether key is in the set.
func (s *Set) Contains(key string) bool {
	_, ok := s.tree.Get(key)
	return ok
}

// Remove deletes key and reports whether it was present.
func (s *Set) Remove(key string) bool {
	return s.tree.Delete(key)
}

// Len counts the keys in the set.
func (s *Set) Len() int {
	return s.tree.Len()
}

// Keys returns the keys in byte order.
func (s *Set) Keys() []string {
	keys := []string{}
	s.tree.Walk(func(key string, _ struct{}) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Name returns the configured name of the backing tree.
func (s *Set) Name() string {
	return s.tree.Name()
}

// Stats returns the write-path counters of the backing tree.
func (s *Set) Stats() Stats {
	return s.tree.Stats()
}

// Validate checks the structure of the backing tree.
func (s *Set) Validate() error {
	return s.tree.Validate()
}
