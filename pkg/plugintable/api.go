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

// API is the per-owner view over the engine's table registry: the
// handle a plugin receives at initialization to discover tables, access
// them through the boundary contract, and contribute tables of its own.
// Failing calls return their nil/failure sentinel and leave the reason
// in the owner's last-error slot.
//
// Tables accessed through GetTable are cached per owner, so asking for
// the same name twice returns the same sdk.TableInput. Tables added
// through AddTable stay referenced here for the owner's lifetime.
type API struct {
	registry *state.Registry
	owner    sdk.LastError
	accessed map[string]*sdk.TableInput
	owned    map[string]state.BaseTable
}

func NewAPI(registry *state.Registry, owner sdk.LastError) *API {
	return &API{
		registry: registry,
		owner:    owner,
		accessed: make(map[string]*sdk.TableInput),
		owned:    make(map[string]state.BaseTable),
	}
}

// ListTables returns the name and key type of every table currently
// registered in the engine instance, whichever side owns them.
func (a *API) ListTables() []sdk.TableInfo {
	tables := a.registry.Tables()
	ret := make([]sdk.TableInfo, 0, len(tables))
	for _, t := range tables {
		ret = append(ret, sdk.TableInfo{Name: t.Name(), KeyType: t.KeyType()})
	}
	return ret
}

// passThrough is satisfied by tables that are themselves adapters over a
// plugin-owned table. It is the identity tag that prevents wrapping such
// a table a second time.
type passThrough interface {
	Input() *sdk.TableInput
}

// GetTable returns the boundary description of the table registered
// under name, or nil if the name is unknown or keyType does not match
// the table's declared key type.
//
// If the table is owned by another plugin, the owner's original
// sdk.TableInput is handed back directly: wrapping it again would stack
// a useless indirection layer and leave two independent adapters, each
// believing it arbitrates the entries' ownership.
func (a *API) GetTable(name string, keyType sdk.Type) *sdk.TableInput {
	if in, ok := a.accessed[name]; ok {
		if in.KeyType != keyType {
			a.owner.SetLastError(fmt.Errorf("%w: table %q has key type %s, requested %s", state.ErrType, name, in.KeyType, keyType))
			return nil
		}
		return in
	}
	t := a.registry.Get(name)
	if t == nil {
		a.owner.SetLastError(fmt.Errorf("%w: unknown table %q", state.ErrNotFound, name))
		return nil
	}
	if t.KeyType() != keyType {
		a.owner.SetLastError(fmt.Errorf("%w: table %q has key type %s, requested %s", state.ErrType, name, t.KeyType(), keyType))
		return nil
	}
	var in *sdk.TableInput
	if pt, ok := t.(passThrough); ok {
		in = pt.Input()
	} else {
		var err error
		in, err = Export(a.owner, t)
		if err != nil {
			a.owner.SetLastError(err)
			return nil
		}
	}
	a.accessed[name] = in
	return in
}

// AddTable registers a plugin-owned table, described by in, under the
// description's declared name and key type. From then on the engine and
// every other plugin can reach it like any native table.
func (a *API) AddTable(in *sdk.TableInput) sdk.Result {
	t, err := wrapForKeyType(a.owner, in)
	if err != nil {
		a.owner.SetLastError(err)
		return sdk.ResultFailure
	}
	if err := a.registry.AddTable(t); err != nil {
		a.owner.SetLastError(err)
		return sdk.ResultFailure
	}
	a.owned[in.Name] = t
	return sdk.ResultSuccess
}

func wrapForKeyType(owner sdk.LastError, in *sdk.TableInput) (state.BaseTable, error) {
	switch in.KeyType {
	case sdk.TypeInt8:
		return NewWrapper[int8](owner, in)
	case sdk.TypeInt16:
		return NewWrapper[int16](owner, in)
	case sdk.TypeInt32:
		return NewWrapper[int32](owner, in)
	case sdk.TypeInt64:
		return NewWrapper[int64](owner, in)
	case sdk.TypeUint8:
		return NewWrapper[uint8](owner, in)
	case sdk.TypeUint16:
		return NewWrapper[uint16](owner, in)
	case sdk.TypeUint32:
		return NewWrapper[uint32](owner, in)
	case sdk.TypeUint64:
		return NewWrapper[uint64](owner, in)
	case sdk.TypeString:
		return NewWrapper[string](owner, in)
	case sdk.TypeBool:
		return NewWrapper[bool](owner, in)
	}
	return nil, fmt.Errorf("%w: unsupported key type %s for table %q", state.ErrType, in.KeyType, in.Name)
}
