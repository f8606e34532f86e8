// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2024 The Falco Authors.

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

package metrics

import (
	"strings"

	"github.com/francesco-furlan/libs/pkg/state"
)

// Provider is implemented by components that expose finished metrics,
// typically plugins that keep their own counters.
type Provider interface {
	Metrics() []Metric
}

// Collector gathers the enabled metric groups into one snapshot.
type Collector struct {
	flags     Flags
	resource  *ResourceUtilizationSampler
	counters  *StateCountersSampler
	providers []Provider
	snapshot  []Metric
}

// NewCollector builds a collector over the given registry. flags
// selects the groups gathered on each Snapshot; hostRoot and startTime
// are handed to the resource sampler, see
// NewResourceUtilizationSampler.
func NewCollector(r *state.Registry, flags Flags, hostRoot string, startTime float64) *Collector {
	c := &Collector{flags: flags}
	if flags&ResourceUtilization != 0 {
		c.resource = NewResourceUtilizationSampler(hostRoot, startTime)
	}
	if flags&StateCounters != 0 {
		c.counters = NewStateCountersSampler(r)
	}
	return c
}

// AddProvider registers a source for the Plugins metric group.
func (c *Collector) AddProvider(p Provider) {
	c.providers = append(c.providers, p)
}

// Snapshot re-samples every enabled group. The previous snapshot is
// discarded.
func (c *Collector) Snapshot() {
	c.snapshot = c.snapshot[:0]
	if c.resource != nil {
		c.resource.Sample()
		c.snapshot = append(c.snapshot, c.resource.Metrics()...)
	}
	if c.counters != nil {
		c.counters.Sample()
		c.snapshot = append(c.snapshot, c.counters.Metrics()...)
	}
	if c.flags&Plugins != 0 {
		for _, p := range c.providers {
			c.snapshot = append(c.snapshot, p.Metrics()...)
		}
	}
}

// Metrics returns the metrics gathered by the last Snapshot.
func (c *Collector) Metrics() []Metric {
	return c.snapshot
}

// Render converts and renders the last snapshot with conv.
func (c *Collector) Render(conv Converter) string {
	var b strings.Builder
	for _, m := range c.snapshot {
		conv.ToUnitConvention(&m)
		b.WriteString(conv.MetricToText(m))
	}
	return b.String()
}
