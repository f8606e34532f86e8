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

// FieldInfo is the descriptor of a single table field. Index is the
// field's stable ordinal within its own half of the schema (static or
// dynamic): ordinals are handed out append-only and never compacted or
// reused.
type FieldInfo struct {
	Name     string
	Index    int
	Type     sdk.Type
	ReadOnly bool
}

// Accessor is a cached handle to one field of a table, obtained once by
// name through GetFieldAccessor or AddField and then reused for repeated
// reads and writes without further name resolution. The declared type is
// re-checked on every use: a stale accessor carrying the wrong type is a
// caller bug that must surface as ErrType, never as a silently
// reinterpreted value.
type Accessor struct {
	Index   int
	Type    sdk.Type
	Dynamic bool
}

// DynamicFields is the runtime-growable half of a table schema. The
// engine's own tables back it with a local ordered list; plugin-owned
// tables back it with a view over the foreign side's schema, which is
// why listing and adding may fail.
type DynamicFields interface {
	// List returns the current dynamic field descriptors in ordinal
	// order.
	List() ([]FieldInfo, error)
	// Add appends a new dynamic field. Adding an already-defined name
	// with the same type returns the existing descriptor; with a
	// different type it fails with ErrType.
	Add(name string, t sdk.Type) (FieldInfo, error)
}

type dynamicFields struct {
	defs   []FieldInfo
	byName map[string]int
}

func newDynamicFields() *dynamicFields {
	return &dynamicFields{byName: make(map[string]int)}
}

func (d *dynamicFields) List() ([]FieldInfo, error) {
	return d.defs, nil
}

func (d *dynamicFields) Add(name string, t sdk.Type) (FieldInfo, error) {
	if i, ok := d.byName[name]; ok {
		if d.defs[i].Type != t {
			return FieldInfo{}, fmt.Errorf("%w: field %q is already defined with type %s", ErrType, name, d.defs[i].Type)
		}
		return d.defs[i], nil
	}
	f := FieldInfo{Name: name, Index: len(d.defs), Type: t}
	d.byName[name] = f.Index
	d.defs = append(d.defs, f)
	return f, nil
}

func (d *dynamicFields) get(index int) (FieldInfo, bool) {
	if index < 0 || index >= len(d.defs) {
		return FieldInfo{}, false
	}
	return d.defs[index], true
}

// ListFields returns the table's full descriptor set, static fields
// first, then the dynamic ones.
func ListFields(t BaseTable) ([]FieldInfo, error) {
	dyn, err := t.DynamicFields().List()
	if err != nil {
		return nil, err
	}
	statics := t.StaticFields()
	ret := make([]FieldInfo, 0, len(statics)+len(dyn))
	ret = append(ret, statics...)
	return append(ret, dyn...), nil
}

// GetFieldAccessor resolves name against the static and dynamic schema
// of t and returns a reusable accessor for it. It fails with ErrNotFound
// for an unknown name and with ErrType when typ disagrees with the
// field's declared type.
func GetFieldAccessor(t BaseTable, name string, typ sdk.Type) (Accessor, error) {
	statics := t.StaticFields()
	var static *FieldInfo
	for i := range statics {
		if statics[i].Name == name {
			static = &statics[i]
			break
		}
	}
	dyn, err := t.DynamicFields().List()
	if err != nil {
		return Accessor{}, err
	}
	var dynamic *FieldInfo
	for i := range dyn {
		if dyn[i].Name == name {
			dynamic = &dyn[i]
			break
		}
	}
	if static != nil && dynamic != nil {
		return Accessor{}, fmt.Errorf("%w: field is defined as both static and dynamic: %s", ErrSchema, name)
	}
	info := static
	if info == nil {
		info = dynamic
	}
	if info == nil {
		return Accessor{}, fmt.Errorf("%w: undefined field %q in table %q", ErrNotFound, name, t.Name())
	}
	if info.Type != typ {
		return Accessor{}, fmt.Errorf("%w: field %q is declared as %s, requested as %s", ErrType, name, info.Type, typ)
	}
	return Accessor{Index: info.Index, Type: typ, Dynamic: dynamic != nil}, nil
}

// AddField appends a new dynamic field to t's schema and returns an
// accessor for it. A dynamic field can never shadow a static one.
func AddField(t BaseTable, name string, typ sdk.Type) (Accessor, error) {
	for _, f := range t.StaticFields() {
		if f.Name == name {
			return Accessor{}, fmt.Errorf("%w: can't add dynamic field already defined as static: %s", ErrSchema, name)
		}
	}
	info, err := t.DynamicFields().Add(name, typ)
	if err != nil {
		return Accessor{}, err
	}
	return Accessor{Index: info.Index, Type: typ, Dynamic: true}, nil
}
