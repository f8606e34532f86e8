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

// Package plugintable adapts state tables across the plugin boundary in
// both directions.
//
// Wrapper makes a plugin-owned table, described only by a sdk.TableInput,
// satisfy the native state.Table interface so the engine and other
// plugins can use it like any other table. Export does the inverse: it
// wraps an engine-owned state table into a sdk.TableInput so foreign code
// can drive it through the boundary vtables.
//
// API glues the two together at the registry level. It is the surface a
// plugin receives at initialization to discover, access, and contribute
// tables; when the requested table turns out to be owned by another
// plugin, API hands back that plugin's original sdk.TableInput instead of
// wrapping it a second time.
//
// Errors never cross the boundary as panics in either direction: exported
// vtable calls trap native faults into the owner's last-error slot and
// return the call's failure sentinel, while foreign failure sentinels are
// turned into state.ErrBoundary errors carrying the foreign owner's
// last-error message.
package plugintable
