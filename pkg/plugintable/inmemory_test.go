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
	"errors"
	"fmt"

	"github.com/francesco-furlan/libs/pkg/sdk"
)

// testOwner is a minimal per-plugin last-error slot.
type testOwner struct {
	err error
}

func (o *testOwner) LastError() error       { return o.err }
func (o *testOwner) SetLastError(err error) { o.err = err }

// fakeField is the field handle type given out by fakeTable.
type fakeField struct {
	name     string
	typ      sdk.Type
	readOnly bool
}

// fakeEntry stores field values by field name.
type fakeEntry struct {
	vals      map[string]sdk.Data
	destroyed bool
}

// fakeTable simulates the plugin side of the boundary: an in-memory
// uint64-keyed table fully driven through its own sdk.TableInput
// vtables. Call counters let tests assert how often the engine side
// goes back to the foreign schema.
type fakeTable struct {
	owner   *testOwner
	name    string
	fields  []*fakeField
	entries map[uint64]*fakeEntry

	listCalls     int
	getFieldCalls int
}

func newFakeTable(name string) *fakeTable {
	return &fakeTable{
		owner:   &testOwner{},
		name:    name,
		entries: make(map[uint64]*fakeEntry),
	}
}

func (f *fakeTable) input() *sdk.TableInput {
	return &sdk.TableInput{
		Name:    f.name,
		KeyType: sdk.TypeUint64,
		Table:   f,
		Fields: sdk.TableFields{
			ListTableFields: f.listTableFields,
			GetTableField:   f.getTableField,
			AddTableField:   f.addTableField,
		},
		Reader: sdk.TableReader{
			GetTableName:   func(sdk.TableHandle) string { return f.name },
			GetTableSize:   f.getTableSize,
			GetTableEntry:  f.getTableEntry,
			ReadEntryField: f.readEntryField,
		},
		Writer: sdk.TableWriter{
			ClearTable:        f.clearTable,
			EraseTableEntry:   f.eraseTableEntry,
			CreateTableEntry:  f.createTableEntry,
			DestroyTableEntry: f.destroyTableEntry,
			AddTableEntry:     f.addTableEntry,
			WriteEntryField:   f.writeEntryField,
		},
	}
}

func (f *fakeTable) listTableFields(sdk.TableHandle) ([]sdk.FieldInfo, sdk.Result) {
	f.listCalls++
	infos := make([]sdk.FieldInfo, 0, len(f.fields))
	for _, fld := range f.fields {
		infos = append(infos, sdk.FieldInfo{Name: fld.name, Type: fld.typ, ReadOnly: fld.readOnly})
	}
	return infos, sdk.ResultSuccess
}

func (f *fakeTable) getTableField(_ sdk.TableHandle, name string, t sdk.Type) sdk.FieldHandle {
	f.getFieldCalls++
	for _, fld := range f.fields {
		if fld.name == name {
			if fld.typ != t {
				f.owner.SetLastError(fmt.Errorf("field %q has type %s", name, fld.typ))
				return nil
			}
			return fld
		}
	}
	f.owner.SetLastError(fmt.Errorf("unknown field %q", name))
	return nil
}

func (f *fakeTable) addTableField(_ sdk.TableHandle, name string, t sdk.Type) sdk.FieldHandle {
	for _, fld := range f.fields {
		if fld.name == name {
			f.owner.SetLastError(fmt.Errorf("field %q already defined", name))
			return nil
		}
	}
	fld := &fakeField{name: name, typ: t}
	f.fields = append(f.fields, fld)
	return fld
}

func (f *fakeTable) getTableSize(sdk.TableHandle) uint64 {
	return uint64(len(f.entries))
}

func (f *fakeTable) getTableEntry(_ sdk.TableHandle, key *sdk.Data) sdk.EntryHandle {
	e, ok := f.entries[key.U64]
	if !ok {
		return nil
	}
	return e
}

func (f *fakeTable) readEntryField(_ sdk.TableHandle, e sdk.EntryHandle, fld sdk.FieldHandle, out *sdk.Data) sdk.Result {
	entry, field, err := f.handles(e, fld)
	if err != nil {
		f.owner.SetLastError(err)
		return sdk.ResultFailure
	}
	*out = entry.vals[field.name]
	return sdk.ResultSuccess
}

func (f *fakeTable) clearTable(sdk.TableHandle) sdk.Result {
	f.entries = make(map[uint64]*fakeEntry)
	return sdk.ResultSuccess
}

func (f *fakeTable) eraseTableEntry(_ sdk.TableHandle, key *sdk.Data) sdk.Result {
	if _, ok := f.entries[key.U64]; !ok {
		f.owner.SetLastError(fmt.Errorf("no entry with key %d", key.U64))
		return sdk.ResultFailure
	}
	delete(f.entries, key.U64)
	return sdk.ResultSuccess
}

func (f *fakeTable) createTableEntry(sdk.TableHandle) sdk.EntryHandle {
	return &fakeEntry{vals: make(map[string]sdk.Data)}
}

func (f *fakeTable) destroyTableEntry(_ sdk.TableHandle, e sdk.EntryHandle) {
	if entry, ok := e.(*fakeEntry); ok {
		entry.destroyed = true
	}
}

func (f *fakeTable) addTableEntry(_ sdk.TableHandle, key *sdk.Data, e sdk.EntryHandle) sdk.EntryHandle {
	entry, ok := e.(*fakeEntry)
	if !ok {
		f.owner.SetLastError(errors.New("invalid entry handle"))
		return nil
	}
	f.entries[key.U64] = entry
	return entry
}

func (f *fakeTable) writeEntryField(_ sdk.TableHandle, e sdk.EntryHandle, fld sdk.FieldHandle, in *sdk.Data) sdk.Result {
	entry, field, err := f.handles(e, fld)
	if err != nil {
		f.owner.SetLastError(err)
		return sdk.ResultFailure
	}
	if field.readOnly {
		f.owner.SetLastError(fmt.Errorf("field %q is read-only", field.name))
		return sdk.ResultFailure
	}
	entry.vals[field.name] = *in
	return sdk.ResultSuccess
}

func (f *fakeTable) handles(e sdk.EntryHandle, fld sdk.FieldHandle) (*fakeEntry, *fakeField, error) {
	entry, ok := e.(*fakeEntry)
	if !ok {
		return nil, nil, errors.New("invalid entry handle")
	}
	field, ok := fld.(*fakeField)
	if !ok {
		return nil, nil, errors.New("invalid field handle")
	}
	return entry, field, nil
}
