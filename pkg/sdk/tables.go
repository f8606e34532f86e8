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

package sdk

// TableFields is the vtable for discovering and defining table fields.
// All three calls return a nil value on failure, with the message
// retrievable from the call owner's last-error slot.
type TableFields struct {
	// ListTableFields returns the full list of the table's fields,
	// static and dynamic, in stable ordinal order.
	ListTableFields func(t TableHandle) ([]FieldInfo, Result)
	// GetTableField returns an accessor handle for an already-defined
	// field, failing if the field is unknown or if dataType does not
	// match its declared type.
	GetTableField func(t TableHandle, name string, dataType Type) FieldHandle
	// AddTableField defines a new field in the table and returns an
	// accessor handle for it.
	AddTableField func(t TableHandle, name string, dataType Type) FieldHandle
}

// TableReader is the vtable for the read path of a table.
type TableReader struct {
	GetTableName func(t TableHandle) string
	// GetTableSize returns the number of entries in the table, or
	// InvalidSize on failure.
	GetTableSize func(t TableHandle) uint64
	// GetTableEntry returns a non-owning handle to the entry stored at
	// the given key, or nil if no such entry exists.
	GetTableEntry func(t TableHandle, key *Data) EntryHandle
	// ReadEntryField reads the field identified by the accessor f from
	// the given entry into out.
	ReadEntryField func(t TableHandle, e EntryHandle, f FieldHandle, out *Data) Result
}

// TableWriter is the vtable for the write path of a table.
type TableWriter struct {
	ClearTable      func(t TableHandle) Result
	EraseTableEntry func(t TableHandle, key *Data) Result
	// CreateTableEntry allocates a new detached entry, owned by the
	// caller until it is either added to the table with AddTableEntry
	// or released with DestroyTableEntry. Those are the only two legal
	// ways of disposing of it.
	CreateTableEntry func(t TableHandle) EntryHandle
	// DestroyTableEntry releases a detached entry that was never added
	// to the table. It must not be used on handles returned by
	// GetTableEntry or AddTableEntry, which remain owned by the table.
	DestroyTableEntry func(t TableHandle, e EntryHandle)
	// AddTableEntry inserts a detached entry into the table at the
	// given key, transferring its ownership to the table. On success it
	// returns a non-owning handle to the inserted entry, which may
	// differ from the one passed in; the original handle must no longer
	// be used or destroyed by the caller.
	AddTableEntry func(t TableHandle, key *Data, e EntryHandle) EntryHandle
	// WriteEntryField writes in into the field identified by the
	// accessor f of the given entry.
	WriteEntryField func(t TableHandle, e EntryHandle, f FieldHandle, in *Data) Result
}

// TableInput is the full boundary-side description of a state table. It
// is the same shape whether the backing storage lives in the engine or in
// a plugin: the implementing side fills in the opaque Table handle and
// the three vtables, and the consuming side calls through them without
// knowing who owns the storage.
type TableInput struct {
	Name    string
	KeyType Type
	Table   TableHandle
	Fields  TableFields
	Reader  TableReader
	Writer  TableWriter
}
