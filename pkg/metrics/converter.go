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
	"regexp"
	"sort"
	"strings"
)

// Converter renders metrics to one line-oriented text format.
type Converter interface {
	// MetricToText renders a single metric.
	MetricToText(m Metric) string
	// ToUnitConvention rewrites the metric's value, unit, and name
	// suffix to the converter's preferred units. It is a no-op for
	// converters without a unit convention.
	ToUnitConvention(m *Metric)
}

var (
	unitSuffixRE    = regexp.MustCompile(`(_kb|_bytes|_mb|_perc|_percentage|_ratio|_ns|_ts|_sec|_total)$`)
	memorySuffixRE  = regexp.MustCompile(`(_kb|_bytes)$`)
	percSuffixRE    = regexp.MustCompile(`_perc$`)
	invalidNameRE   = regexp.MustCompile(`[^a-zA-Z0-9_:]`)
	underscoreRunRE = regexp.MustCompile(`_{2,}`)
)

// SanitizeMetricName replaces characters outside the Prometheus metric
// name alphabet with underscores and collapses the resulting runs. A
// name starting with a digit gets a leading underscore.
func SanitizeMetricName(name string) string {
	name = invalidNameRE.ReplaceAllString(name, "_")
	name = underscoreRunRE.ReplaceAllString(name, "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// TextConverter renders "name value" lines and leaves units alone.
type TextConverter struct{}

func (TextConverter) MetricToText(m Metric) string {
	return m.Name + " " + m.ValueText() + "\n"
}

func (TextConverter) ToUnitConvention(*Metric) {}

// OutputRuleConverter renders the compact format used in notification
// outputs. Memory values are normalized to megabytes.
type OutputRuleConverter struct {
	TextConverter
}

func (OutputRuleConverter) ToUnitConvention(m *Metric) {
	switch m.Unit {
	case UnitMemoryKibibytes:
		*m = NewDouble(memorySuffixRE.ReplaceAllString(m.Name, "_mb"),
			m.Flags, UnitMemoryMegabytes, m.MetricType, m.asDouble()/1024.0)
	case UnitMemoryBytes:
		*m = NewDouble(memorySuffixRE.ReplaceAllString(m.Name, "_mb"),
			m.Flags, UnitMemoryMegabytes, m.MetricType, m.asDouble()/(1024.0*1024.0))
	}
}

// PrometheusConverter renders the Prometheus text exposition format.
// Memory values are normalized to bytes and percentages to ratios, and
// the unit becomes an explicit name suffix per the Prometheus naming
// conventions.
type PrometheusConverter struct {
	// Namespace and Subsystem qualify every metric name, typically
	// "falcosecurity" and the emitting component.
	Namespace string
	Subsystem string
	// ConstLabels are attached to every rendered sample.
	ConstLabels map[string]string
}

var prometheusUnitSuffix = map[Unit]string{
	UnitCount:           "total",
	UnitRatio:           "ratio",
	UnitPerc:            "percentage",
	UnitMemoryBytes:     "bytes",
	UnitMemoryKibibytes: "kibibytes",
	UnitMemoryMegabytes: "megabytes",
	UnitTimeNs:          "nanoseconds",
	UnitTimeS:           "seconds",
	UnitTimeNsCount:     "nanoseconds_total",
	UnitTimeSCount:      "seconds_total",
	UnitTimeTimestampNs: "timestamp_nanoseconds",
}

func (c PrometheusConverter) MetricToText(m Metric) string {
	fqn := c.qualify(m.Name)
	if suffix := prometheusUnitSuffix[m.Unit]; suffix != "" {
		fqn = unitSuffixRE.ReplaceAllString(fqn, "") + "_" + suffix
	}
	return c.exposition(fqn, m.MetricType.String(), m.ValueText())
}

// InfoMetricToText renders a constant "_info" gauge, used to expose
// version strings and similar build facts through labels alone.
func (c PrometheusConverter) InfoMetricToText(name string, labels map[string]string) string {
	merged := make(map[string]string, len(c.ConstLabels)+len(labels))
	for k, v := range c.ConstLabels {
		merged[k] = v
	}
	for k, v := range labels {
		merged[k] = v
	}
	sub := c
	sub.ConstLabels = merged
	return sub.exposition(c.qualify(name)+"_info", "gauge", "1")
}

func (c PrometheusConverter) ToUnitConvention(m *Metric) {
	switch m.Unit {
	case UnitMemoryKibibytes:
		*m = NewDouble(memorySuffixRE.ReplaceAllString(m.Name, "_bytes"),
			m.Flags, UnitMemoryBytes, m.MetricType, m.asDouble()*1024.0)
	case UnitMemoryMegabytes:
		*m = NewDouble(m.Name, m.Flags, UnitMemoryBytes, m.MetricType,
			m.asDouble()*1024.0*1024.0)
	case UnitPerc:
		*m = NewDouble(percSuffixRE.ReplaceAllString(m.Name, "_ratio"),
			m.Flags, UnitRatio, m.MetricType, m.asDouble()/100.0)
	}
}

func (c PrometheusConverter) qualify(name string) string {
	var b strings.Builder
	if c.Namespace != "" {
		b.WriteString(c.Namespace)
		b.WriteByte('_')
	}
	if c.Subsystem != "" {
		b.WriteString(c.Subsystem)
		b.WriteByte('_')
	}
	b.WriteString(name)
	return b.String()
}

func (c PrometheusConverter) exposition(fqn, metricType, value string) string {
	fqn = SanitizeMetricName(fqn)
	var b strings.Builder
	b.WriteString("# HELP ")
	b.WriteString(fqn)
	b.WriteString(" https://falco.org/docs/metrics/\n")
	b.WriteString("# TYPE ")
	b.WriteString(fqn)
	b.WriteByte(' ')
	b.WriteString(metricType)
	b.WriteByte('\n')
	b.WriteString(fqn)
	if len(c.ConstLabels) > 0 {
		keys := make([]string, 0, len(c.ConstLabels))
		for k := range c.ConstLabels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(SanitizeMetricName(k))
			b.WriteString(`="`)
			b.WriteString(c.ConstLabels[k])
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(value)
	b.WriteByte('\n')
	return b.String()
}
