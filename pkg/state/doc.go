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

// Package state implements the engine's native state table model: keyed
// tables of entries whose schema is split between static fields, fixed
// at table construction, and dynamic fields, appended at runtime by
// whoever holds a reference to the table.
//
// Field ordinals are append-only and never reused, so an Accessor
// obtained once by name stays valid for the lifetime of the program no
// matter how many fields are added after it.
//
// The package defines no internal locking: a table, its entries, and
// the Registry that owns them are meant to be driven by one logical
// caller at a time, typically the engine's event-processing goroutine.
package state
