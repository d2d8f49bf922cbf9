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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
)

// stats are updated on the write path by many goroutines at once, so they
// use striped counters.
type stats struct {
	commits  *xsync.Counter
	helps    *xsync.Counter
	aborts   *xsync.Counter
	restarts *xsync.Counter
}

func newStats() *stats {
	return &stats{
		commits:  xsync.NewCounter(),
		helps:    xsync.NewCounter(),
		aborts:   xsync.NewCounter(),
		restarts: xsync.NewCounter(),
	}
}

// Stats is a point-in-time copy of a tree's write-path counters.
type Stats struct {
	// Commits counts edits installed by Put and Delete.
	Commits int64
	// Helps counts edits of other writers completed on their behalf.
	Helps int64
	// Aborts counts edits abandoned because a node changed after it was read.
	Aborts int64
	// Restarts counts walks repeated because they raced with another writer.
	Restarts int64
}

// Stats returns the current counters.
func (t *Tree[V]) Stats() Stats {
	return Stats{
		Commits:  t.stats.commits.Value(),
		Helps:    t.stats.helps.Value(),
		Aborts:   t.stats.aborts.Value(),
		Restarts: t.stats.restarts.Value(),
	}
}

// StatsSource is implemented by Tree and Set.
type StatsSource interface {
	Name() string
	Stats() Stats
}

// Collector exports the Stats of a tree as Prometheus counters.
type Collector struct {
	source   StatsSource
	commits  *prometheus.Desc
	helps    *prometheus.Desc
	aborts   *prometheus.Desc
	restarts *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector for source, labelled with its name.
func NewCollector(source StatsSource) *Collector {
	labels := prometheus.Labels{"tree": source.Name()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("radix", "tree", name), help, nil, labels)
	}
	return &Collector{
		source:   source,
		commits:  desc("commits_total", "Number of edits installed."),
		helps:    desc("helps_total", "Number of edits completed on behalf of another writer."),
		aborts:   desc("aborts_total", "Number of edits abandoned after a conflicting write."),
		restarts: desc("restarts_total", "Number of walks repeated after racing a writer."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commits
	ch <- c.helps
	ch <- c.aborts
	ch <- c.restarts
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.commits, prometheus.CounterValue, float64(s.Commits))
	ch <- prometheus.MustNewConstMetric(c.helps, prometheus.CounterValue, float64(s.Helps))
	ch <- prometheus.MustNewConstMetric(c.aborts, prometheus.CounterValue, float64(s.Aborts))
	ch <- prometheus.MustNewConstMetric(c.restarts, prometheus.CounterValue, float64(s.Restarts))
}
