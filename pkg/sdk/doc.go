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

// Package sdk defines the data-only contract that connects the engine and
// its plugins around shared state tables. The contract is made of plain
// values only: a closed enumeration of state types, a tagged data union,
// result codes, opaque handles, and tables of plain function values
// ("vtables") passed by value. No side ever learns whether the other end
// is backed by engine-native storage or by plugin-owned storage.
//
// Both the engine and plugins program against this package: the engine
// exports its native tables as TableInput values (see pkg/plugintable),
// and plugins hand the engine TableInput values describing tables they
// own themselves.
package sdk
