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
	"testing"

	"github.com/francesco-furlan/libs/pkg/sdk"
	"github.com/francesco-furlan/libs/pkg/state"
)

func TestWrapperKeyTypeCheck(t *testing.T) {
	ft := newFakeTable("t1")
	if _, err := NewWrapper[uint64](ft.owner, ft.input()); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWrapper[string](ft.owner, ft.input()); !errors.Is(err, state.ErrType) {
		t.Errorf("expected ErrType, but found %v", err)
	}
}

func TestWrapperReadWrite(t *testing.T) {
	ft := newFakeTable("t1")
	w, err := NewWrapper[uint64](ft.owner, ft.input())
	if err != nil {
		t.Fatal(err)
	}

	count, err := state.AddField(w, "count", sdk.TypeUint64)
	if err != nil {
		t.Fatal(err)
	}

	e, err := w.NewEntry()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.WriteField(count, &sdk.Data{U64: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddEntry(42, e); err != nil {
		t.Fatal(err)
	}

	got, err := w.GetEntry(42)
	if err != nil {
		t.Fatal(err)
	}
	var out sdk.Data
	if err := got.ReadField(count, &out); err != nil {
		t.Fatal(err)
	}
	if out.U64 != 5 {
		t.Errorf("expected count 5, but found %d", out.U64)
	}

	// the foreign storage is the single source of truth
	if ft.entries[42].vals["count"].U64 != 5 {
		t.Error("expected the write to land in the foreign storage")
	}

	if n, _ := w.EntriesCount(); n != 1 {
		t.Errorf("expected 1 entry, but found %d", n)
	}
	if err := w.EraseEntry(42); err != nil {
		t.Fatal(err)
	}
	if _, err := w.GetEntry(42); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, but found %v", err)
	}
	if err := w.EraseEntry(42); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, but found %v", err)
	}
}

func TestWrapperClearEntries(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())
	for i := uint64(0); i < 3; i++ {
		e, _ := w.NewEntry()
		if _, err := w.AddEntry(i, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.ClearEntries(); err != nil {
		t.Fatal(err)
	}
	if n, _ := w.EntriesCount(); n != 0 {
		t.Errorf("expected 0 entries, but found %d", n)
	}
}

func TestWrapperForeachUnsupported(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())
	done, err := w.ForeachEntry(func(state.Entry) bool { return true })
	if done || !errors.Is(err, state.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, but found done=%v err=%v", done, err)
	}
}

func TestWrapperSchemaRefresh(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())

	if _, err := state.AddField(w, "a", sdk.TypeUint64); err != nil {
		t.Fatal(err)
	}
	fields, err := state.ListFields(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, but found %d", len(fields))
	}
	gets := ft.getFieldCalls

	// a stable schema must not cost new accessor acquisitions
	if _, err := state.ListFields(w); err != nil {
		t.Fatal(err)
	}
	if ft.getFieldCalls != gets {
		t.Errorf("expected no new accessor acquisitions, but found %d", ft.getFieldCalls-gets)
	}

	// a field added behind the wrapper's back shows up on the next
	// listing, and only the new ordinal gets an accessor
	ft.addTableField(nil, "b", sdk.TypeString)
	fields, err = state.ListFields(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, but found %d", len(fields))
	}
	if ft.getFieldCalls != gets+1 {
		t.Errorf("expected 1 new accessor acquisition, but found %d", ft.getFieldCalls-gets)
	}
}

func TestWrapperStaleAccessorType(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())
	acc, err := state.AddField(w, "v", sdk.TypeUint64)
	if err != nil {
		t.Fatal(err)
	}

	e, err := w.NewEntry()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.WriteField(acc, &sdk.Data{U64: 7}); err != nil {
		t.Fatal(err)
	}

	// an accessor whose declared type disagrees with the schema must
	// fail on use, not reinterpret the slot
	stale := acc
	stale.Type = sdk.TypeString
	if err := e.WriteField(stale, &sdk.Data{Str: "x"}); !errors.Is(err, state.ErrType) {
		t.Errorf("expected ErrType, but found %v", err)
	}
	var out sdk.Data
	if err := e.ReadField(stale, &out); !errors.Is(err, state.ErrType) {
		t.Errorf("expected ErrType, but found %v", err)
	}
	// the declared type still works
	if err := e.ReadField(acc, &out); err != nil || out.U64 != 7 {
		t.Errorf("expected 7, but found %d (%v)", out.U64, err)
	}
}

func TestWrapperEntryDestroy(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())

	// a detached entry must be released through the foreign destroy
	e, _ := w.NewEntry()
	fe := e.(*pluginEntry).handle.(*fakeEntry)
	e.(state.Destroyer).Destroy()
	if !fe.destroyed {
		t.Error("expected the foreign entry to be destroyed")
	}

	// once inserted, ownership is the table's and Destroy is a no-op
	e, _ = w.NewEntry()
	if _, err := w.AddEntry(1, e); err != nil {
		t.Fatal(err)
	}
	fe = ft.entries[1]
	e.(state.Destroyer).Destroy()
	if fe.destroyed {
		t.Error("expected Destroy to be a no-op after insertion")
	}
}

func TestWrapperAddEntryOwnership(t *testing.T) {
	ft := newFakeTable("t1")
	w, _ := NewWrapper[uint64](ft.owner, ft.input())

	e, _ := w.NewEntry()
	if _, err := w.AddEntry(1, e); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddEntry(2, e); !errors.Is(err, state.ErrOwnership) {
		t.Errorf("expected ErrOwnership, but found %v", err)
	}

	other := newFakeTable("t2")
	ow, _ := NewWrapper[uint64](other.owner, other.input())
	foreign, _ := ow.NewEntry()
	if _, err := w.AddEntry(3, foreign); !errors.Is(err, state.ErrOwnership) {
		t.Errorf("expected ErrOwnership, but found %v", err)
	}
}
