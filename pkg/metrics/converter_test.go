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

import "testing"

func TestSanitizeMetricName(t *testing.T) {
	cases := map[string]string{
		"n_entries":         "n_entries",
		"n.entries":         "n_entries",
		"table a-b entries": "table_a_b_entries",
		"x___y":             "x_y",
		"9lives":            "_9lives",
		"ns:metric":         "ns:metric",
	}
	for in, expected := range cases {
		if got := SanitizeMetricName(in); got != expected {
			t.Errorf("expected %q, but found %q", expected, got)
		}
	}
}

func TestTextConverter(t *testing.T) {
	m := NewU64("n_entries", StateCounters, UnitCount, NonMonotonicCurrent, 42)
	var c TextConverter
	c.ToUnitConvention(&m)
	if got := c.MetricToText(m); got != "n_entries 42\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestOutputRuleConverterMemory(t *testing.T) {
	var c OutputRuleConverter

	kb := NewU32("memory_rss_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, 2048)
	c.ToUnitConvention(&kb)
	if kb.Name != "memory_rss_mb" || kb.Unit != UnitMemoryMegabytes {
		t.Errorf("unexpected conversion: %+v", kb)
	}
	if kb.Value.D != 2.0 {
		t.Errorf("expected 2 MB, but found %f", kb.Value.D)
	}

	b := NewU64("container_memory_used_bytes", ResourceUtilization, UnitMemoryBytes, NonMonotonicCurrent, 3*1024*1024)
	c.ToUnitConvention(&b)
	if b.Name != "container_memory_used_mb" || b.Value.D != 3.0 {
		t.Errorf("unexpected conversion: %+v", b)
	}
}

func TestPrometheusConverterExposition(t *testing.T) {
	c := PrometheusConverter{Namespace: "falcosecurity", Subsystem: "engine"}
	m := NewU64("n_entries", StateCounters, UnitCount, NonMonotonicCurrent, 42)
	c.ToUnitConvention(&m)

	expected := "# HELP falcosecurity_engine_n_entries_total https://falco.org/docs/metrics/\n" +
		"# TYPE falcosecurity_engine_n_entries_total gauge\n" +
		"falcosecurity_engine_n_entries_total 42\n"
	if got := c.MetricToText(m); got != expected {
		t.Errorf("unexpected exposition:\n%s", got)
	}
}

func TestPrometheusConverterLabels(t *testing.T) {
	c := PrometheusConverter{
		Namespace:   "falcosecurity",
		ConstLabels: map[string]string{"machine_id": "abc", "agent": "a1"},
	}
	m := NewU64("n_tables", StateCounters, UnitCount, Monotonic, 3)
	got := c.MetricToText(m)
	// labels render sorted by name
	expected := "# HELP falcosecurity_n_tables_total https://falco.org/docs/metrics/\n" +
		"# TYPE falcosecurity_n_tables_total counter\n" +
		`falcosecurity_n_tables_total{agent="a1",machine_id="abc"} 3` + "\n"
	if got != expected {
		t.Errorf("unexpected exposition:\n%s", got)
	}
}

func TestPrometheusConverterUnits(t *testing.T) {
	c := PrometheusConverter{}

	kb := NewU32("memory_rss_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, 4)
	c.ToUnitConvention(&kb)
	if kb.Unit != UnitMemoryBytes || kb.Value.D != 4096 {
		t.Errorf("unexpected conversion: %+v", kb)
	}
	if got := c.MetricToText(kb); got !=
		"# HELP memory_rss_bytes https://falco.org/docs/metrics/\n# TYPE memory_rss_bytes gauge\nmemory_rss_bytes 4096\n" {
		t.Errorf("unexpected exposition:\n%s", got)
	}

	perc := NewDouble("cpu_usage_perc", ResourceUtilization, UnitPerc, NonMonotonicCurrent, 12.5)
	c.ToUnitConvention(&perc)
	if perc.Unit != UnitRatio || perc.Value.D != 0.125 {
		t.Errorf("unexpected conversion: %+v", perc)
	}
	if got := c.MetricToText(perc); got !=
		"# HELP cpu_usage_ratio https://falco.org/docs/metrics/\n# TYPE cpu_usage_ratio gauge\ncpu_usage_ratio 0.125\n" {
		t.Errorf("unexpected exposition:\n%s", got)
	}
}

func TestPrometheusConverterInfo(t *testing.T) {
	c := PrometheusConverter{Namespace: "falcosecurity"}
	got := c.InfoMetricToText("engine", map[string]string{"version": "0.21.0"})
	expected := "# HELP falcosecurity_engine_info https://falco.org/docs/metrics/\n" +
		"# TYPE falcosecurity_engine_info gauge\n" +
		`falcosecurity_engine_info{version="0.21.0"} 1` + "\n"
	if got != expected {
		t.Errorf("unexpected exposition:\n%s", got)
	}
}
