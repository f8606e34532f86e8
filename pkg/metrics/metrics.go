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

import "strconv"

// Flags selects which metric groups a Collector gathers.
type Flags uint32

const (
	// ResourceUtilization enables CPU, memory, and fd counters for the
	// agent process and the underlying host.
	ResourceUtilization Flags = 1 << iota
	// StateCounters enables table and entry counts read off the live
	// table registry.
	StateCounters
	// Plugins enables metrics exposed by registered plugins.
	Plugins
)

// ValueType tags which field of a Value carries the number.
type ValueType uint32

const (
	ValueUint32 ValueType = iota + 1
	ValueInt32
	ValueUint64
	ValueInt64
	ValueDouble
	ValueFloat
	ValueInt
)

// Unit qualifies a metric value and drives the unit suffix the
// converters emit.
type Unit uint32

const (
	UnitCount Unit = iota
	UnitRatio
	UnitPerc
	UnitMemoryBytes
	UnitMemoryKibibytes
	UnitMemoryMegabytes
	UnitTimeNs
	UnitTimeS
	UnitTimeNsCount
	UnitTimeSCount
	UnitTimeTimestampNs
)

// MetricType states whether a value only ever grows or tracks a
// current level. It maps directly onto the Prometheus counter/gauge
// split.
type MetricType uint32

const (
	Monotonic MetricType = iota
	NonMonotonicCurrent
)

func (t MetricType) String() string {
	if t == Monotonic {
		return "counter"
	}
	return "gauge"
}

// Value is a union of the numeric representations a metric can carry.
// Only the field selected by the metric's ValueType is meaningful.
type Value struct {
	U32 uint32
	S32 int32
	U64 uint64
	S64 int64
	D   float64
	F   float32
	I   int
}

// Metric is one finished sample: a namespaced name, the group it
// belongs to, and a typed value with its unit and monotonicity.
type Metric struct {
	Name       string
	Flags      Flags
	ValueType  ValueType
	Unit       Unit
	MetricType MetricType
	Value      Value
}

func NewU32(name string, flags Flags, unit Unit, t MetricType, v uint32) Metric {
	return Metric{Name: name, Flags: flags, ValueType: ValueUint32, Unit: unit, MetricType: t, Value: Value{U32: v}}
}

func NewS32(name string, flags Flags, unit Unit, t MetricType, v int32) Metric {
	return Metric{Name: name, Flags: flags, ValueType: ValueInt32, Unit: unit, MetricType: t, Value: Value{S32: v}}
}

func NewU64(name string, flags Flags, unit Unit, t MetricType, v uint64) Metric {
	return Metric{Name: name, Flags: flags, ValueType: ValueUint64, Unit: unit, MetricType: t, Value: Value{U64: v}}
}

func NewS64(name string, flags Flags, unit Unit, t MetricType, v int64) Metric {
	return Metric{Name: name, Flags: flags, ValueType: ValueInt64, Unit: unit, MetricType: t, Value: Value{S64: v}}
}

func NewDouble(name string, flags Flags, unit Unit, t MetricType, v float64) Metric {
	return Metric{Name: name, Flags: flags, ValueType: ValueDouble, Unit: unit, MetricType: t, Value: Value{D: v}}
}

// ValueText renders the selected value field as a plain decimal string.
func (m Metric) ValueText() string {
	switch m.ValueType {
	case ValueUint32:
		return strconv.FormatUint(uint64(m.Value.U32), 10)
	case ValueInt32:
		return strconv.FormatInt(int64(m.Value.S32), 10)
	case ValueUint64:
		return strconv.FormatUint(m.Value.U64, 10)
	case ValueInt64:
		return strconv.FormatInt(m.Value.S64, 10)
	case ValueDouble:
		return strconv.FormatFloat(m.Value.D, 'f', -1, 64)
	case ValueFloat:
		return strconv.FormatFloat(float64(m.Value.F), 'f', -1, 32)
	case ValueInt:
		return strconv.Itoa(m.Value.I)
	}
	return "0"
}

// asDouble widens the selected value field for unit arithmetic.
func (m Metric) asDouble() float64 {
	switch m.ValueType {
	case ValueUint32:
		return float64(m.Value.U32)
	case ValueInt32:
		return float64(m.Value.S32)
	case ValueUint64:
		return float64(m.Value.U64)
	case ValueInt64:
		return float64(m.Value.S64)
	case ValueDouble:
		return m.Value.D
	case ValueFloat:
		return float64(m.Value.F)
	case ValueInt:
		return float64(m.Value.I)
	}
	return 0
}
