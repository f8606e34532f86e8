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

// Entry is one record's worth of field values within a table. An entry
// starts its life detached, owned by whoever created it through
// Table.NewEntry; a successful Table.AddEntry transfers its ownership to
// the table once and for all. References handed out by GetEntry and
// AddEntry are non-owning.
type Entry interface {
	// ReadField reads the field identified by a into out.
	ReadField(a Accessor, out *sdk.Data) error
	// WriteField writes in into the field identified by a.
	WriteField(a Accessor, in *sdk.Data) error
}

// Destroyer is optionally implemented by entries whose backing storage
// must be released explicitly when a detached entry is never inserted
// into its table. Entries of the engine's own tables don't need it.
type Destroyer interface {
	Destroy()
}

// tableEntry is the entry implementation of the engine's native tables.
// Static field values live in fixed slots sized at creation; dynamic
// field values live in slots grown lazily as higher ordinals get
// written.
type tableEntry struct {
	statics  []FieldInfo
	dyn      *dynamicFields
	fixed    []sdk.Data
	grown    []sdk.Data
	inserted bool
}

func (e *tableEntry) ReadField(a Accessor, out *sdk.Data) error {
	slot, _, err := e.slot(a)
	if err != nil {
		return err
	}
	*out = *slot
	return nil
}

func (e *tableEntry) WriteField(a Accessor, in *sdk.Data) error {
	slot, info, err := e.slot(a)
	if err != nil {
		return err
	}
	if info.ReadOnly {
		return fmt.Errorf("%w: field %q is read-only", ErrUnsupported, info.Name)
	}
	*slot = *in
	return nil
}

// slot resolves a to the entry's value slot, re-validating the accessor
// against the declared field type on every use.
func (e *tableEntry) slot(a Accessor) (*sdk.Data, FieldInfo, error) {
	if a.Dynamic {
		info, ok := e.dyn.get(a.Index)
		if !ok {
			return nil, FieldInfo{}, fmt.Errorf("%w: no dynamic field with ordinal %d", ErrNotFound, a.Index)
		}
		if info.Type != a.Type {
			return nil, FieldInfo{}, fmt.Errorf("%w: field %q is declared as %s, accessed as %s", ErrType, info.Name, info.Type, a.Type)
		}
		for len(e.grown) <= a.Index {
			e.grown = append(e.grown, sdk.Data{})
		}
		return &e.grown[a.Index], info, nil
	}
	if a.Index < 0 || a.Index >= len(e.statics) {
		return nil, FieldInfo{}, fmt.Errorf("%w: no static field with ordinal %d", ErrNotFound, a.Index)
	}
	info := e.statics[a.Index]
	if info.Type != a.Type {
		return nil, FieldInfo{}, fmt.Errorf("%w: field %q is declared as %s, accessed as %s", ErrType, info.Name, info.Type, a.Type)
	}
	return &e.fixed[a.Index], info, nil
}
