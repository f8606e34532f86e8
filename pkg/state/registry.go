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

package state

import (
	"fmt"
	"sort"
)

// Registry is the engine-instance-wide catalog of state tables. It owns
// every registered table for the lifetime of the engine instance that
// created it; there is deliberately no package-level instance, each
// engine passes its own around.
type Registry struct {
	tables map[string]BaseTable
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]BaseTable)}
}

// Tables returns the registered tables in name order.
func (r *Registry) Tables() []BaseTable {
	ret := make([]BaseTable, 0, len(r.tables))
	for _, t := range r.tables {
		ret = append(ret, t)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name() < ret[j].Name() })
	return ret
}

// Get returns the table registered under name, or nil.
func (r *Registry) Get(name string) BaseTable {
	return r.tables[name]
}

// AddTable registers t under its own name. Registering a second table
// under an already-taken name is rejected.
func (r *Registry) AddTable(t BaseTable) error {
	name := t.Name()
	if _, ok := r.tables[name]; ok {
		return fmt.Errorf("a table is already registered with name %q", name)
	}
	r.tables[name] = t
	return nil
}

// GetTable returns the table registered under name, specialized over the
// key type K. It fails with ErrNotFound for an unknown name and with
// ErrType when K does not match the table's declared key type.
func GetTable[K Key](r *Registry, name string) (Table[K], error) {
	b := r.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: unknown table %q", ErrNotFound, name)
	}
	if kt := TypeOf[K](); b.KeyType() != kt {
		return nil, fmt.Errorf("%w: table %q has key type %s, requested %s", ErrType, name, b.KeyType(), kt)
	}
	t, ok := b.(Table[K])
	if !ok {
		return nil, fmt.Errorf("%w: table %q does not support key type %s", ErrType, name, TypeOf[K]())
	}
	return t, nil
}
