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

package plugintable

import (
	"fmt"

	"github.com/francesco-furlan/libs/pkg/sdk"
	"github.com/francesco-furlan/libs/pkg/state"
)

// Wrapper adapts a plugin-owned table, described by a sdk.TableInput, to
// the native state.Table interface. Every operation is a direct
// pass-through to the vtables supplied by the owning plugin: the foreign
// side stays the single source of truth and no entry content is ever
// cached locally.
type Wrapper[K state.Key] struct {
	owner  sdk.LastError
	input  *sdk.TableInput
	fields *pluginFields
}

// NewWrapper wraps the table described by input on behalf of its owning
// plugin. The foreign-declared key type must match K; a mismatch is a
// configuration error, not a runtime one.
func NewWrapper[K state.Key](owner sdk.LastError, input *sdk.TableInput) (*Wrapper[K], error) {
	if kt := state.TypeOf[K](); input.KeyType != kt {
		return nil, fmt.Errorf("%w: table %q is keyed by %s, wrapped with key type %s", state.ErrType, input.Name, input.KeyType, kt)
	}
	return &Wrapper[K]{
		owner:  owner,
		input:  input,
		fields: &pluginFields{owner: owner, input: input},
	}, nil
}

// Input returns the original boundary description of the wrapped table.
// Handing this back unchanged is what lets a second plugin reach the
// table without stacking another wrapping layer in between.
func (w *Wrapper[K]) Input() *sdk.TableInput {
	return w.input
}

func (w *Wrapper[K]) Name() string {
	return w.input.Name
}

func (w *Wrapper[K]) KeyType() sdk.Type {
	return w.input.KeyType
}

// StaticFields is always empty: a plugin-owned table has no compiled-in
// fields, its whole schema is discovered at runtime.
func (w *Wrapper[K]) StaticFields() []state.FieldInfo {
	return nil
}

func (w *Wrapper[K]) DynamicFields() state.DynamicFields {
	return w.fields
}

func (w *Wrapper[K]) EntriesCount() (uint64, error) {
	n := w.input.Reader.GetTableSize(w.input.Table)
	if n == sdk.InvalidSize {
		return 0, boundaryError(w.owner, "get table size")
	}
	return n, nil
}

func (w *Wrapper[K]) ClearEntries() error {
	if w.input.Writer.ClearTable(w.input.Table) != sdk.ResultSuccess {
		return boundaryError(w.owner, "clear table")
	}
	return nil
}

// ForeachEntry always fails: the boundary offers no safe whole-table
// iteration primitive.
func (w *Wrapper[K]) ForeachEntry(fn func(e state.Entry) bool) (bool, error) {
	return false, fmt.Errorf("%w: 'foreach' on plugin-owned table %q", state.ErrUnsupported, w.input.Name)
}

func (w *Wrapper[K]) NewEntry() (state.Entry, error) {
	h := w.input.Writer.CreateTableEntry(w.input.Table)
	if h == nil {
		return nil, boundaryError(w.owner, "create table entry")
	}
	return &pluginEntry{owner: w.owner, input: w.input, fields: w.fields, handle: h, owned: true}, nil
}

func (w *Wrapper[K]) GetEntry(key K) (state.Entry, error) {
	keyData := state.KeyData(key)
	h := w.input.Reader.GetTableEntry(w.input.Table, &keyData)
	if h == nil {
		return nil, fmt.Errorf("%w: no entry with the given key in table %q", state.ErrNotFound, w.input.Name)
	}
	return &pluginEntry{owner: w.owner, input: w.input, fields: w.fields, handle: h}, nil
}

func (w *Wrapper[K]) AddEntry(key K, e state.Entry) (state.Entry, error) {
	entry, ok := e.(*pluginEntry)
	if !ok || entry.input != w.input {
		return nil, fmt.Errorf("%w: entry was not created by table %q", state.ErrOwnership, w.input.Name)
	}
	if !entry.owned {
		return nil, fmt.Errorf("%w: entry is already owned by a table", state.ErrOwnership)
	}
	keyData := state.KeyData(key)
	h := w.input.Writer.AddTableEntry(w.input.Table, &keyData, entry.handle)
	if h == nil {
		return nil, boundaryError(w.owner, "add table entry")
	}
	entry.handle = h
	entry.owned = false
	return entry, nil
}

func (w *Wrapper[K]) EraseEntry(key K) error {
	keyData := state.KeyData(key)
	if w.input.Writer.EraseTableEntry(w.input.Table, &keyData) != sdk.ResultSuccess {
		return fmt.Errorf("%w: no entry with the given key in table %q", state.ErrNotFound, w.input.Name)
	}
	return nil
}

// pluginFields mirrors the schema of a plugin-owned table. Foreign
// discovery calls are assumed expensive, so the local descriptor cache is
// rebuilt only when the foreign-reported field count differs from the
// cached one. Accessor handles are cached per ordinal and, once obtained,
// never reacquired.
type pluginFields struct {
	owner     sdk.LastError
	input     *sdk.TableInput
	defs      []state.FieldInfo
	accessors []sdk.FieldHandle
}

func (f *pluginFields) List() ([]state.FieldInfo, error) {
	infos, rc := f.input.Fields.ListTableFields(f.input.Table)
	if rc != sdk.ResultSuccess {
		return nil, boundaryError(f.owner, "list table fields")
	}
	if len(infos) != len(f.defs) {
		f.defs = f.defs[:0]
		for i, info := range infos {
			f.defs = append(f.defs, state.FieldInfo{Name: info.Name, Index: i, Type: info.Type, ReadOnly: info.ReadOnly})
		}
	}
	for len(f.accessors) < len(f.defs) {
		f.accessors = append(f.accessors, nil)
	}
	for i := range f.defs {
		if f.accessors[i] != nil {
			continue
		}
		h := f.input.Fields.GetTableField(f.input.Table, f.defs[i].Name, f.defs[i].Type)
		if h == nil {
			return nil, boundaryError(f.owner, "get table field")
		}
		f.accessors[i] = h
	}
	return f.defs, nil
}

func (f *pluginFields) Add(name string, t sdk.Type) (state.FieldInfo, error) {
	if f.input.Fields.AddTableField(f.input.Table, name, t) == nil {
		return state.FieldInfo{}, boundaryError(f.owner, "add table field")
	}
	// trigger the refresh so both the descriptors and the accessor
	// handles cover the new field
	defs, err := f.List()
	if err != nil {
		return state.FieldInfo{}, err
	}
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return state.FieldInfo{}, fmt.Errorf("%w: field %q not reported by table %q after add", state.ErrBoundary, name, f.input.Name)
}

// accessor returns the cached foreign handle for the given ordinal,
// refreshing the schema mirror first if the ordinal is not covered yet.
// The accessor's declared type is re-checked against the mirrored
// schema on every use, like the native entry path does.
func (f *pluginFields) accessor(index int, typ sdk.Type) (sdk.FieldHandle, error) {
	if index >= len(f.accessors) || f.accessors[index] == nil {
		if _, err := f.List(); err != nil {
			return nil, err
		}
	}
	if index < 0 || index >= len(f.accessors) || f.accessors[index] == nil {
		return nil, fmt.Errorf("%w: no field with ordinal %d in table %q", state.ErrNotFound, index, f.input.Name)
	}
	if info := f.defs[index]; info.Type != typ {
		return nil, fmt.Errorf("%w: field %q is declared as %s, accessed as %s", state.ErrType, info.Name, info.Type, typ)
	}
	return f.accessors[index], nil
}

// pluginEntry is a handle to an entry living in plugin-owned storage.
// owned is true only in the window between creation and insertion; it is
// what decides whether Destroy must call back into the foreign destroy
// function.
type pluginEntry struct {
	owner  sdk.LastError
	input  *sdk.TableInput
	fields *pluginFields
	handle sdk.EntryHandle
	owned  bool
}

func (e *pluginEntry) ReadField(a state.Accessor, out *sdk.Data) error {
	acc, err := e.fields.accessor(a.Index, a.Type)
	if err != nil {
		return err
	}
	if e.input.Reader.ReadEntryField(e.input.Table, e.handle, acc, out) != sdk.ResultSuccess {
		return boundaryError(e.owner, "read entry field")
	}
	return nil
}

func (e *pluginEntry) WriteField(a state.Accessor, in *sdk.Data) error {
	acc, err := e.fields.accessor(a.Index, a.Type)
	if err != nil {
		return err
	}
	if e.input.Writer.WriteEntryField(e.input.Table, e.handle, acc, in) != sdk.ResultSuccess {
		return boundaryError(e.owner, "write entry field")
	}
	return nil
}

// Destroy releases a detached entry that was never inserted into its
// table. Once ownership has been transferred by AddEntry it is a no-op.
func (e *pluginEntry) Destroy() {
	if !e.owned {
		return
	}
	e.owned = false
	e.input.Writer.DestroyTableEntry(e.input.Table, e.handle)
}

// boundaryError turns a foreign failure sentinel into a native error
// carrying the message stored in the foreign owner's last-error slot.
func boundaryError(owner sdk.LastError, op string) error {
	if err := owner.LastError(); err != nil {
		return fmt.Errorf("%w: %s: %s", state.ErrBoundary, op, err.Error())
	}
	return fmt.Errorf("%w: %s", state.ErrBoundary, op)
}
