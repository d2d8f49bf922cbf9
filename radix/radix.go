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

/*
Package radix provides a concurrent radix tree (compressed trie) mapping string
keys to values. Reads never block and never coordinate with writers. Writes
replace whole nodes by compare-and-swap; an edit that has to change more than
one node publishes its decided replacement on every node it depends on, and any
thread that runs into such an edit completes it before going on, so a stalled
writer cannot hold up the rest of the tree.
*/
package radix

import (
	"io"
	"log/slog"
)

const defaultName = "radix"

// Config contains configuration parameters for a Tree.
type Config struct {
	// Name identifies the tree in log records and exported metrics.
	Name string

	// Logger receives debug records when edits are helped or aborted. A nil
	// Logger discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with a discarding logger.
func DefaultConfig() *Config {
	return &Config{
		Name:   defaultName,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// withDefaults fills unset fields of a copy of c.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	cfg := *c
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	if cfg.Logger == nil {
		cfg.Logger = d.Logger
	}
	return &cfg
}
