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

import "strconv"

// Type is the closed enumeration of the value types supported by state
// tables, used both for table keys and for entry fields. The set is
// deliberately not extensible so that dispatching code can switch over it
// exhaustively.
type Type uint32

const (
	TypeInt8 Type = iota + 1
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeString
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	}
	return "unknown type (" + strconv.FormatUint(uint64(t), 10) + ")"
}

// Data is the tagged union payload used for table keys, entry field
// values, and field accessor I/O. Only the member matching the Type
// negotiated for the key or field is meaningful; the others are ignored.
type Data struct {
	S8  int8
	S16 int16
	S32 int32
	S64 int64
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
	Str string
	B   bool
}

// Result is the return code used by boundary calls that signal
// success/failure without producing a value. The accompanying error
// message, if any, is retrieved from the call owner's last-error slot.
type Result int32

const (
	ResultSuccess      Result = 0
	ResultFailure      Result = 1
	ResultNotSupported Result = 9
)

// InvalidSize is the failure sentinel returned by TableReader.GetTableSize.
const InvalidSize = ^uint64(0)

// Opaque tokens exchanged across the boundary. The implementing side is
// the only owner of the memory they identify; the other side must treat
// them as pure pass-through values.
type (
	TableHandle any
	EntryHandle any
	FieldHandle any
)

// FieldInfo describes one field of a table as seen through the boundary.
// Field ordinals are implied by position in the list returned by
// TableFields.ListTableFields and are stable for the table's lifetime.
type FieldInfo struct {
	Name     string
	Type     Type
	ReadOnly bool
}

// TableInfo is the name/key-type pair under which a table is cataloged.
type TableInfo struct {
	Name    string
	KeyType Type
}

// SchemaInfo represents a schema describing the configuration of a
// plugin. Currently, the only supported schema format is JSON Schema.
type SchemaInfo struct {
	Schema string
}

// LastError is the last-error slot of a boundary call owner. Boundary
// calls that fail return their sentinel value and store the reason here;
// the opposite side retrieves it on demand.
type LastError interface {
	// LastError returns the last error occurred on this owner, or nil.
	LastError() error
	// SetLastError stores the last error occurred on this owner.
	SetLastError(err error)
}
