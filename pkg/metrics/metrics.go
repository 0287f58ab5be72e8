/*
Copyright 2024 The Kubernetes Authors.

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

// Package metrics exposes Prometheus collectors describing optimizer runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mobat"

// Collectors groups the run metrics. A nil *Collectors is valid and records nothing.
type Collectors struct {
	Generations prometheus.Counter
	Evaluations prometheus.Counter
	Admissions  prometheus.Counter
	Evictions   prometheus.Counter
	Drops       prometheus.Counter
	ArchiveSize prometheus.Gauge
	RunDuration prometheus.Histogram
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		Generations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Number of completed generations.",
		}),
		Evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of candidate decode and score operations.",
		}),
		Admissions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_admissions_total",
			Help:      "Number of candidates admitted to the archive.",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_evictions_total",
			Help:      "Number of archive members evicted by a dominating candidate.",
		}),
		Drops: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_drops_total",
			Help:      "Number of archive members that fell out of the frontier on re-check.",
		}),
		ArchiveSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_size",
			Help:      "Current number of archive members.",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete optimizer runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// ObserveGeneration records one finished generation
func (c *Collectors) ObserveGeneration(evaluations, admissions, evictions, drops, archiveSize int) {
	if c == nil {
		return
	}
	c.Generations.Inc()
	c.ObservePass(evaluations, admissions, evictions, drops, archiveSize)
}

// ObservePass records an evaluation pass that is not a generation, such as
// the single pass of a zero-generation run
func (c *Collectors) ObservePass(evaluations, admissions, evictions, drops, archiveSize int) {
	if c == nil {
		return
	}
	c.Evaluations.Add(float64(evaluations))
	c.Admissions.Add(float64(admissions))
	c.Evictions.Add(float64(evictions))
	c.Drops.Add(float64(drops))
	c.ArchiveSize.Set(float64(archiveSize))
}

// ObserveRun records the wall time of a finished run
func (c *Collectors) ObserveRun(seconds float64) {
	if c == nil {
		return
	}
	c.RunDuration.Observe(seconds)
}

// WriteTextfile dumps everything gathered by g in the text exposition format
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
