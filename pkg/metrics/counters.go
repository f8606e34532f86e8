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

import "github.com/francesco-furlan/libs/pkg/state"

// StateCountersSampler reads table and entry counts off a live table
// registry. Tables whose entry count cannot be read, which can happen
// for tables backed by a plugin, are counted as tables but contribute
// no entries.
type StateCountersSampler struct {
	registry *state.Registry

	nTables  uint64
	nEntries uint64
	perTable []Metric
}

func NewStateCountersSampler(r *state.Registry) *StateCountersSampler {
	return &StateCountersSampler{registry: r}
}

// Sample recounts every registered table.
func (s *StateCountersSampler) Sample() {
	s.nTables = 0
	s.nEntries = 0
	s.perTable = s.perTable[:0]
	for _, t := range s.registry.Tables() {
		s.nTables++
		n, err := t.EntriesCount()
		if err != nil {
			continue
		}
		s.nEntries += n
		s.perTable = append(s.perTable, NewU64("n_entries_"+t.Name(),
			StateCounters, UnitCount, NonMonotonicCurrent, n))
	}
}

// Metrics returns the aggregate counts followed by one entry count per
// readable table.
func (s *StateCountersSampler) Metrics() []Metric {
	out := []Metric{
		NewU64("n_tables", StateCounters, UnitCount, NonMonotonicCurrent, s.nTables),
		NewU64("n_entries", StateCounters, UnitCount, NonMonotonicCurrent, s.nEntries),
	}
	return append(out, s.perTable...)
}
