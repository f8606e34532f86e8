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

import "github.com/francesco-furlan/libs/pkg/sdk"

// Key is the closed set of Go types usable as state table keys. It
// matches the sdk.Type enumeration one to one; named types are excluded
// on purpose so the mapping stays exact in both directions.
type Key interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		string | bool
}

// TypeOf returns the sdk.Type matching the Go type K.
func TypeOf[K Key]() sdk.Type {
	var k K
	switch any(k).(type) {
	case int8:
		return sdk.TypeInt8
	case int16:
		return sdk.TypeInt16
	case int32:
		return sdk.TypeInt32
	case int64:
		return sdk.TypeInt64
	case uint8:
		return sdk.TypeUint8
	case uint16:
		return sdk.TypeUint16
	case uint32:
		return sdk.TypeUint32
	case uint64:
		return sdk.TypeUint64
	case string:
		return sdk.TypeString
	case bool:
		return sdk.TypeBool
	}
	// unreachable, Key is closed
	return 0
}

// KeyData encodes a native key value into the boundary data union.
func KeyData[K Key](key K) sdk.Data {
	var d sdk.Data
	switch v := any(key).(type) {
	case int8:
		d.S8 = v
	case int16:
		d.S16 = v
	case int32:
		d.S32 = v
	case int64:
		d.S64 = v
	case uint8:
		d.U8 = v
	case uint16:
		d.U16 = v
	case uint32:
		d.U32 = v
	case uint64:
		d.U64 = v
	case string:
		d.Str = v
	case bool:
		d.B = v
	}
	return d
}

// DataKey decodes a native key value from the boundary data union.
func DataKey[K Key](d *sdk.Data) K {
	var key K
	switch p := any(&key).(type) {
	case *int8:
		*p = d.S8
	case *int16:
		*p = d.S16
	case *int32:
		*p = d.S32
	case *int64:
		*p = d.S64
	case *uint8:
		*p = d.U8
	case *uint16:
		*p = d.U16
	case *uint32:
		*p = d.U32
	case *uint64:
		*p = d.U64
	case *string:
		*p = d.Str
	case *bool:
		*p = d.B
	}
	return key
}
