// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

type testCrop struct {
	Name string   `json:"name" validate:"required"`
	N    float64  `json:"n" validate:"finite,gte=0"`
	PH   *float64 `json:"ph_mean,omitempty" validate:"omitempty,finite,lte=14"`
}

type testArtifact struct {
	Version string     `json:"version" validate:"required"`
	Crops   []testCrop `json:"crops" validate:"min=1,dive"`
}

type testConfig struct {
	Listen string `koanf:"listen" validate:"required"`
	Mode   string `koanf:"mode" validate:"oneof=forest remote"`
	Hidden string `json:"-" validate:"required"`
}

func ptr(v float64) *float64 { return &v }

func TestValidator_Singleton(t *testing.T) {
	t.Parallel()

	if Validator() != Validator() {
		t.Error("Validator() returned different instances")
	}
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	a := testArtifact{Version: "1", Crops: []testCrop{{Name: "ragi", N: 40, PH: ptr(6.5)}, {Name: "rice"}}}
	if err := Struct(&a); err != nil {
		t.Errorf("Struct() error = %v, want nil", err)
	}
}

func TestStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"missing version", &testArtifact{Crops: []testCrop{{Name: "a"}}}, "version", "required"},
		{"empty crops", &testArtifact{Version: "1"}, "crops", "min"},
		{"crop without name", &testArtifact{Version: "1", Crops: []testCrop{{}}}, "crops[0].name", "required"},
		{"negative n", &testArtifact{Version: "1", Crops: []testCrop{{Name: "a", N: -1}}}, "crops[0].n", "gte"},
		{"nan n", &testArtifact{Version: "1", Crops: []testCrop{{Name: "a", N: math.NaN()}}}, "crops[0].n", "finite"},
		{"ph over range", &testArtifact{Version: "1", Crops: []testCrop{{Name: "a", PH: ptr(15)}}}, "crops[0].ph_mean", "lte"},
		{"infinite ph", &testArtifact{Version: "1", Crops: []testCrop{{Name: "a", PH: ptr(math.Inf(1))}}}, "crops[0].ph_mean", "finite"},
		{"koanf name", &testConfig{Mode: "forest", Hidden: "x"}, "listen", "required"},
		{"oneof", &testConfig{Listen: ":80", Mode: "tree", Hidden: "x"}, "mode", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Struct(tt.input)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error = %v, want *Error", err)
			}
			if len(verr.Fields) == 0 {
				t.Fatal("Struct() returned no field errors")
			}
			got := verr.Fields[0]
			if got.Namespace != tt.wantField {
				t.Errorf("Namespace = %q, want %q", got.Namespace, tt.wantField)
			}
			if got.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", got.Tag, tt.wantTag)
			}
			if !strings.HasPrefix(got.Message, tt.wantField) {
				t.Errorf("Message = %q, want prefix %q", got.Message, tt.wantField)
			}
		})
	}
}

func TestError_Messages(t *testing.T) {
	t.Parallel()

	err := Struct(&testConfig{Mode: "tree", Hidden: "x"})
	if err == nil {
		t.Fatal("Struct() error = nil")
	}
	want := "listen is required; mode must be one of: forest remote"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatal("error is not *Error")
	}
	fields, ok := verr.Details()["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details() fields = %v, want 2 entries", verr.Details())
	}
	if fields[1]["field"] != "mode" {
		t.Errorf("fields[1].field = %v, want mode", fields[1]["field"])
	}
}

func TestError_Empty(t *testing.T) {
	t.Parallel()

	if got := (&Error{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
}
