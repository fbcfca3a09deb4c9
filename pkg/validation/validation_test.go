package validation

import (
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type line struct {
	Quantity int `json:"quantity" validate:"min=1,max=99"`
}

type payload struct {
	Name  string `json:"name" validate:"required"`
	Kind  string `json:"kind" validate:"omitempty,oneof=cod bank_transfer"`
	Lines []line `json:"lines" validate:"required,min=1,dive"`
}

func TestStructReportsJSONFieldPaths(t *testing.T) {
	err := Struct(payload{Kind: "cash", Lines: []line{{Quantity: 100}}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", typed.Details())
	}
	want := map[string]string{
		"name":              "is required",
		"kind":              "must be one of: cod bank_transfer",
		"lines[0].quantity": "must be at most 99",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Fatalf("field %s: expected %q, got %q (all: %v)", field, msg, details[field], details)
		}
	}
}

func TestStructAcceptsValid(t *testing.T) {
	if err := Struct(payload{Name: "x", Lines: []line{{Quantity: 1}}}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
