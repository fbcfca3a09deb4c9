package checkout

import (
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestValidateQuote_Matches(t *testing.T) {
	q := Quote{
		Lines: []LineQuote{
			{ProductID: uuid.New(), ProductName: "Tea", UnitPrice: 100000, Quantity: 2},
			{ProductID: uuid.New(), ProductName: "Cup", UnitPrice: 15000, Quantity: 1},
		},
		ShippingFee:          30000,
		SubmittedShippingFee: 30000,
		SubmittedTotal:       245000,
	}
	if q.Subtotal() != 215000 {
		t.Fatalf("expected subtotal 215000, got %d", q.Subtotal())
	}
	if err := ValidateQuote(q); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateQuote_StalePrice(t *testing.T) {
	q := Quote{
		Lines:                []LineQuote{{ProductID: uuid.New(), UnitPrice: 120000, Quantity: 1}},
		ShippingFee:          30000,
		SubmittedShippingFee: 30000,
		SubmittedTotal:       130000,
	}
	err := ValidateQuote(q)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected pkgerrors.Error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeConflict, typed.Code())
	}
	detail, ok := typed.Details().(TotalMismatchDetail)
	if !ok {
		t.Fatalf("expected mismatch detail, got %T", typed.Details())
	}
	if detail.ExpectedTotal != 150000 || detail.SubmittedTotal != 130000 {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestValidateQuote_ShippingFeeMismatch(t *testing.T) {
	q := Quote{
		Lines:                []LineQuote{{ProductID: uuid.New(), UnitPrice: 10000, Quantity: 1}},
		ShippingFee:          30000,
		SubmittedShippingFee: 0,
		SubmittedTotal:       40000,
	}
	if err := ValidateQuote(q); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
