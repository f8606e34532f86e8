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
	"github.com/francesco-furlan/libs/pkg/state"
)

// fieldAccessor is the handle type that exported vtables give out for
// field access. The static/dynamic tag recorded at creation travels with
// it and decides how the field is resolved on every later use.
type fieldAccessor struct {
	acc state.Accessor
}

// exportedTable drives an engine-owned table on behalf of foreign
// callers. Field accessors are cached in a name-keyed map owned by the
// adapter for its whole lifetime. The keyed entry operations are bound to
// the table's key specialization once, at Export time.
type exportedTable struct {
	owner     sdk.LastError
	table     state.BaseTable
	accessors map[string]*fieldAccessor

	newEntry   func() (state.Entry, error)
	getEntry   func(key *sdk.Data) (state.Entry, error)
	addEntry   func(key *sdk.Data, e state.Entry) (state.Entry, error)
	eraseEntry func(key *sdk.Data) error
}

// Export wraps an engine-owned table into the boundary contract so that
// foreign code can drive it. Faults raised by the native implementation
// while servicing a call never escape as panics: they are stored in
// owner's last-error slot and the call returns its failure sentinel.
func Export(owner sdk.LastError, t state.BaseTable) (*sdk.TableInput, error) {
	w := &exportedTable{
		owner:     owner,
		table:     t,
		accessors: make(map[string]*fieldAccessor),
	}
	if err := bindKeyedOps(w); err != nil {
		return nil, err
	}
	return &sdk.TableInput{
		Name:    t.Name(),
		KeyType: t.KeyType(),
		Table:   w,
		Fields: sdk.TableFields{
			ListTableFields: w.listTableFields,
			GetTableField:   w.getTableField,
			AddTableField:   w.addTableField,
		},
		Reader: sdk.TableReader{
			GetTableName:   w.getTableName,
			GetTableSize:   w.getTableSize,
			GetTableEntry:  w.getTableEntry,
			ReadEntryField: w.readEntryField,
		},
		Writer: sdk.TableWriter{
			ClearTable:        w.clearTable,
			EraseTableEntry:   w.eraseTableEntry,
			CreateTableEntry:  w.createTableEntry,
			DestroyTableEntry: w.destroyTableEntry,
			AddTableEntry:     w.addTableEntry,
			WriteEntryField:   w.writeEntryField,
		},
	}, nil
}

// bindKeyedOps dispatches once on the table's key type and installs the
// matching specialization of every keyed operation.
func bindKeyedOps(w *exportedTable) error {
	switch w.table.KeyType() {
	case sdk.TypeInt8:
		return bindKeyed[int8](w)
	case sdk.TypeInt16:
		return bindKeyed[int16](w)
	case sdk.TypeInt32:
		return bindKeyed[int32](w)
	case sdk.TypeInt64:
		return bindKeyed[int64](w)
	case sdk.TypeUint8:
		return bindKeyed[uint8](w)
	case sdk.TypeUint16:
		return bindKeyed[uint16](w)
	case sdk.TypeUint32:
		return bindKeyed[uint32](w)
	case sdk.TypeUint64:
		return bindKeyed[uint64](w)
	case sdk.TypeString:
		return bindKeyed[string](w)
	case sdk.TypeBool:
		return bindKeyed[bool](w)
	}
	return fmt.Errorf("%w: unsupported key type %s for table %q", state.ErrType, w.table.KeyType(), w.table.Name())
}

func bindKeyed[K state.Key](w *exportedTable) error {
	t, ok := w.table.(state.Table[K])
	if !ok {
		return fmt.Errorf("%w: table %q does not implement key type %s", state.ErrType, w.table.Name(), state.TypeOf[K]())
	}
	w.newEntry = t.NewEntry
	w.getEntry = func(key *sdk.Data) (state.Entry, error) {
		return t.GetEntry(state.DataKey[K](key))
	}
	w.addEntry = func(key *sdk.Data, e state.Entry) (state.Entry, error) {
		return t.AddEntry(state.DataKey[K](key), e)
	}
	w.eraseEntry = func(key *sdk.Data) error {
		return t.EraseEntry(state.DataKey[K](key))
	}
	return nil
}

// guard converts a native panic into a stored last-error message. It
// must be invoked through defer; onPanic, if any, resets the call's
// return values to the failure sentinel.
func (w *exportedTable) guard(onPanic func()) {
	if r := recover(); r != nil {
		w.owner.SetLastError(fmt.Errorf("table %q: %v", w.table.Name(), r))
		if onPanic != nil {
			onPanic()
		}
	}
}

func (w *exportedTable) fail(err error) {
	w.owner.SetLastError(err)
}

func (w *exportedTable) listTableFields(_ sdk.TableHandle) (infos []sdk.FieldInfo, rc sdk.Result) {
	defer w.guard(func() { infos, rc = nil, sdk.ResultFailure })
	fields, err := state.ListFields(w.table)
	if err != nil {
		w.fail(err)
		return nil, sdk.ResultFailure
	}
	infos = make([]sdk.FieldInfo, 0, len(fields))
	for _, f := range fields {
		infos = append(infos, sdk.FieldInfo{Name: f.Name, Type: f.Type, ReadOnly: f.ReadOnly})
	}
	return infos, sdk.ResultSuccess
}

func (w *exportedTable) getTableField(_ sdk.TableHandle, name string, dataType sdk.Type) (h sdk.FieldHandle) {
	defer w.guard(func() { h = nil })
	if fa, ok := w.accessors[name]; ok {
		if fa.acc.Type != dataType {
			w.fail(fmt.Errorf("%w: field %q is cached as %s, requested as %s", state.ErrType, name, fa.acc.Type, dataType))
			return nil
		}
		return fa
	}
	acc, err := state.GetFieldAccessor(w.table, name, dataType)
	if err != nil {
		w.fail(err)
		return nil
	}
	fa := &fieldAccessor{acc: acc}
	w.accessors[name] = fa
	return fa
}

func (w *exportedTable) addTableField(_ sdk.TableHandle, name string, dataType sdk.Type) (h sdk.FieldHandle) {
	defer w.guard(func() { h = nil })
	if _, err := state.AddField(w.table, name, dataType); err != nil {
		w.fail(err)
		return nil
	}
	return w.getTableField(nil, name, dataType)
}

func (w *exportedTable) getTableName(_ sdk.TableHandle) string {
	return w.table.Name()
}

func (w *exportedTable) getTableSize(_ sdk.TableHandle) (n uint64) {
	defer w.guard(func() { n = sdk.InvalidSize })
	count, err := w.table.EntriesCount()
	if err != nil {
		w.fail(err)
		return sdk.InvalidSize
	}
	return count
}

func (w *exportedTable) getTableEntry(_ sdk.TableHandle, key *sdk.Data) (h sdk.EntryHandle) {
	defer w.guard(func() { h = nil })
	e, err := w.getEntry(key)
	if err != nil {
		// a missing key is not a fault, the nil handle says it all
		if !errors.Is(err, state.ErrNotFound) {
			w.fail(err)
		}
		return nil
	}
	return e
}

func (w *exportedTable) readEntryField(_ sdk.TableHandle, e sdk.EntryHandle, f sdk.FieldHandle, out *sdk.Data) (rc sdk.Result) {
	defer w.guard(func() { rc = sdk.ResultFailure })
	entry, fa, err := checkHandles(e, f)
	if err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	if err := entry.ReadField(fa.acc, out); err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	return sdk.ResultSuccess
}

func (w *exportedTable) clearTable(_ sdk.TableHandle) (rc sdk.Result) {
	defer w.guard(func() { rc = sdk.ResultFailure })
	if err := w.table.ClearEntries(); err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	return sdk.ResultSuccess
}

func (w *exportedTable) eraseTableEntry(_ sdk.TableHandle, key *sdk.Data) (rc sdk.Result) {
	defer w.guard(func() { rc = sdk.ResultFailure })
	if err := w.eraseEntry(key); err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	return sdk.ResultSuccess
}

func (w *exportedTable) createTableEntry(_ sdk.TableHandle) (h sdk.EntryHandle) {
	defer w.guard(func() { h = nil })
	e, err := w.newEntry()
	if err != nil {
		w.fail(err)
		return nil
	}
	return e
}

func (w *exportedTable) destroyTableEntry(_ sdk.TableHandle, e sdk.EntryHandle) {
	defer w.guard(nil)
	if d, ok := e.(state.Destroyer); ok {
		d.Destroy()
	}
}

func (w *exportedTable) addTableEntry(_ sdk.TableHandle, key *sdk.Data, e sdk.EntryHandle) (h sdk.EntryHandle) {
	defer w.guard(func() { h = nil })
	entry, ok := e.(state.Entry)
	if !ok {
		w.fail(errors.New("invalid entry handle"))
		return nil
	}
	added, err := w.addEntry(key, entry)
	if err != nil {
		w.fail(err)
		return nil
	}
	return added
}

func (w *exportedTable) writeEntryField(_ sdk.TableHandle, e sdk.EntryHandle, f sdk.FieldHandle, in *sdk.Data) (rc sdk.Result) {
	defer w.guard(func() { rc = sdk.ResultFailure })
	entry, fa, err := checkHandles(e, f)
	if err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	if err := entry.WriteField(fa.acc, in); err != nil {
		w.fail(err)
		return sdk.ResultFailure
	}
	return sdk.ResultSuccess
}

func checkHandles(e sdk.EntryHandle, f sdk.FieldHandle) (state.Entry, *fieldAccessor, error) {
	entry, ok := e.(state.Entry)
	if !ok {
		return nil, nil, errors.New("invalid entry handle")
	}
	fa, ok := f.(*fieldAccessor)
	if !ok {
		return nil, nil, errors.New("invalid field handle")
	}
	return entry, fa, nil
}
