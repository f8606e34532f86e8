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

// Package metrics collects the engine's operational counters and
// renders them to text exposition formats.
//
// It deals in finished numbers only: a Metric is a name plus a tagged
// value, unit, and monotonicity, produced by the host-resource sampler,
// by state counters read off the table registry, or by the plugins
// themselves. Converters turn those numbers into either a plain
// "name value" line or the Prometheus exposition format, normalizing
// unit suffixes along the way. Nothing here participates in the table,
// schema, or ownership model of pkg/state.
package metrics
