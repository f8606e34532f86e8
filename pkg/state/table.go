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

	"github.com/francesco-furlan/libs/pkg/sdk"
)

// BaseTable is the key-type-agnostic surface of a state table, the part
// the Registry and the boundary adapters can work with without knowing
// the table's key specialization.
type BaseTable interface {
	Name() string
	KeyType() sdk.Type
	StaticFields() []FieldInfo
	DynamicFields() DynamicFields
	// EntriesCount returns the number of entries in the table.
	EntriesCount() (uint64, error)
	// ClearEntries removes every entry from the table.
	ClearEntries() error
	// ForeachEntry invokes fn once per entry until fn returns false. It
	// reports whether the iteration ran to completion. Implementations
	// backed by foreign storage may refuse it with ErrUnsupported.
	ForeachEntry(fn func(e Entry) bool) (bool, error)
}

// Table is a state table specialized over its key type. Exactly one
// implementation owns a table's storage: either the engine (NewTable) or
// a plugin (pkg/plugintable); ownership never changes after creation.
type Table[K Key] interface {
	BaseTable
	// NewEntry allocates a detached entry shaped on the table's current
	// schema, owned by the caller until added to the table.
	NewEntry() (Entry, error)
	// GetEntry returns a non-owning reference to the entry stored at
	// key, or ErrNotFound.
	GetEntry(key K) (Entry, error)
	// AddEntry inserts a detached entry at key, transferring its
	// ownership to the table, and returns a non-owning reference to the
	// inserted entry. Inserting an entry that is already owned by a
	// table fails with ErrOwnership.
	AddEntry(key K, e Entry) (Entry, error)
	// EraseEntry removes the entry stored at key, or fails with
	// ErrNotFound leaving the table unchanged.
	EraseEntry(key K) error
}

type table[K Key] struct {
	name    string
	statics []FieldInfo
	dyn     *dynamicFields
	entries map[K]*tableEntry
}

// NewTable creates an engine-owned in-memory table with the given static
// fields. Static field ordinals are assigned by position; the Index
// value of the passed descriptors is ignored.
func NewTable[K Key](name string, staticFields ...FieldInfo) (Table[K], error) {
	t := &table[K]{
		name:    name,
		dyn:     newDynamicFields(),
		entries: make(map[K]*tableEntry),
	}
	seen := make(map[string]bool, len(staticFields))
	for i, f := range staticFields {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate static field %q in table %q", ErrSchema, f.Name, name)
		}
		seen[f.Name] = true
		f.Index = i
		t.statics = append(t.statics, f)
	}
	return t, nil
}

func (t *table[K]) Name() string {
	return t.name
}

func (t *table[K]) KeyType() sdk.Type {
	return TypeOf[K]()
}

func (t *table[K]) StaticFields() []FieldInfo {
	return t.statics
}

func (t *table[K]) DynamicFields() DynamicFields {
	return t.dyn
}

func (t *table[K]) EntriesCount() (uint64, error) {
	return uint64(len(t.entries)), nil
}

func (t *table[K]) ClearEntries() error {
	t.entries = make(map[K]*tableEntry)
	return nil
}

func (t *table[K]) ForeachEntry(fn func(e Entry) bool) (bool, error) {
	for _, e := range t.entries {
		if !fn(e) {
			return false, nil
		}
	}
	return true, nil
}

func (t *table[K]) NewEntry() (Entry, error) {
	return &tableEntry{
		statics: t.statics,
		dyn:     t.dyn,
		fixed:   make([]sdk.Data, len(t.statics)),
	}, nil
}

func (t *table[K]) GetEntry(key K) (Entry, error) {
	e, ok := t.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: no entry with the given key in table %q", ErrNotFound, t.name)
	}
	return e, nil
}

func (t *table[K]) AddEntry(key K, e Entry) (Entry, error) {
	te, ok := e.(*tableEntry)
	if !ok || te.dyn != t.dyn {
		return nil, fmt.Errorf("%w: entry was not created by table %q", ErrOwnership, t.name)
	}
	if te.inserted {
		return nil, fmt.Errorf("%w: entry is already owned by a table", ErrOwnership)
	}
	te.inserted = true
	t.entries[key] = te
	return te, nil
}

func (t *table[K]) EraseEntry(key K) error {
	if _, ok := t.entries[key]; !ok {
		return fmt.Errorf("%w: no entry with the given key in table %q", ErrNotFound, t.name)
	}
	delete(t.entries, key)
	return nil
}
