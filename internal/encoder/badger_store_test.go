// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package encoder

import (
	"testing"
)

func TestBadgerStore_AppendLoad(t *testing.T) {
	t.Parallel()

	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer store.Close()

	exts := []Extension{
		{Field: FieldTaluq, Code: 12, Value: "hunsur"},
		{Field: FieldDistrict, Code: 30, Value: "udupi"},
		{Field: FieldDistrict, Code: 31, Value: "kodagu"},
	}
	for _, ext := range exts {
		if err := store.Append(ext); err != nil {
			t.Fatalf("Append(%+v) error = %v", ext, err)
		}
	}
	// Rewriting a slot with its own value is a no-op; a different value
	// replaces what an older table left there.
	if err := store.Append(Extension{Field: FieldTaluq, Code: 12, Value: "hunsur"}); err != nil {
		t.Fatalf("Append(same value) error = %v", err)
	}
	if err := store.Append(Extension{Field: FieldDistrict, Code: 30, Value: "hassan"}); err != nil {
		t.Fatalf("Append(stale slot) error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("Load() returned %d extensions, want 3", len(loaded))
	}
	want := []Extension{
		{Field: FieldDistrict, Code: 30, Value: "hassan"},
		{Field: FieldDistrict, Code: 31, Value: "kodagu"},
		{Field: FieldTaluq, Code: 12, Value: "hunsur"},
	}
	for i := range want {
		if loaded[i] != want[i] {
			t.Errorf("Load()[%d] = %+v, want %+v", i, loaded[i], want[i])
		}
	}
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	enc, err := New(map[string][]string{FieldDistrict: {"mysuru"}}, WithStore(store))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	udupi := enc.Encode(FieldDistrict, "Udupi")
	if err := store.RunGC(0.5); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	enc2, err := New(map[string][]string{FieldDistrict: {"mysuru"}}, WithStore(reopened))
	if err != nil {
		t.Fatalf("New() after reopen error = %v", err)
	}
	if got, ok := enc2.Lookup(FieldDistrict, "udupi"); !ok || got != udupi {
		t.Errorf("Lookup(udupi) = %d,%v, want %d,true", got, ok, udupi)
	}
}

func TestBadgerStore_Delete(t *testing.T) {
	t.Parallel()

	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer store.Close()

	keep := Extension{Field: FieldDistrict, Code: 3, Value: "udupi"}
	drop := Extension{Field: FieldDistrict, Code: 4, Value: "kodagu"}
	for _, ext := range []Extension{keep, drop} {
		if err := store.Append(ext); err != nil {
			t.Fatalf("Append(%+v) error = %v", ext, err)
		}
	}

	missing := Extension{Field: FieldTaluq, Code: 7, Value: "absent"}
	if err := store.Delete(drop, missing); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("Delete() with no extensions error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 || loaded[0] != keep {
		t.Errorf("Load() = %+v, want [%+v]", loaded, keep)
	}
}

// Codes must not drift when the artifact table shrinks between restarts and
// new values are assigned into slots an older table had used.
func TestBadgerStore_ShrunkBaseKeepsCodesStable(t *testing.T) {
	t.Parallel()

	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer store.Close()

	start := func(base ...string) *Encoder {
		t.Helper()
		enc, err := New(map[string][]string{FieldDistrict: base}, WithStore(store))
		if err != nil {
			t.Fatalf("New(%v) error = %v", base, err)
		}
		return enc
	}

	first := start("bagalkot", "mysuru", "tumakuru")
	if got := first.Encode(FieldDistrict, "udupi"); got != 3 {
		t.Fatalf("first run Encode(udupi) = %d, want 3", got)
	}

	second := start("bagalkot", "mysuru")
	hassan := second.Encode(FieldDistrict, "hassan")
	kodagu := second.Encode(FieldDistrict, "kodagu")
	if hassan != 2 || kodagu != 3 {
		t.Fatalf("second run codes = %d,%d, want 2,3", hassan, kodagu)
	}

	third := start("bagalkot", "mysuru")
	tests := []struct {
		value string
		want  int
		found bool
	}{
		{"hassan", 2, true},
		{"kodagu", 3, true},
		{"udupi", 0, false},
	}
	for _, tt := range tests {
		got, ok := third.Lookup(FieldDistrict, tt.value)
		if ok != tt.found || (ok && got != tt.want) {
			t.Errorf("third run Lookup(%s) = %d,%v, want %d,%v", tt.value, got, ok, tt.want, tt.found)
		}
	}
	if got := third.Encode(FieldDistrict, "udupi"); got != 4 {
		t.Errorf("third run Encode(udupi) = %d, want 4", got)
	}
}

func TestCheckKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		ext     Extension
		wantErr bool
	}{
		{"match", "encoder:district:0000000004", Extension{Field: "district", Code: 4}, false},
		{"field mismatch", "encoder:taluq:0000000004", Extension{Field: "district", Code: 4}, true},
		{"code mismatch", "encoder:district:0000000005", Extension{Field: "district", Code: 4}, true},
		{"no separator", "encoder:district", Extension{Field: "district"}, true},
		{"bad code", "encoder:district:x", Extension{Field: "district"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkKey(tt.key, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
