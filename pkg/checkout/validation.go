// Package checkout holds server-side checks applied to order-create requests.
package checkout

import (
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// LineQuote is one order line priced from the current catalog.
type LineQuote struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   int64
	Quantity    int
}

// Quote pairs the server-priced lines with what the client submitted.
type Quote struct {
	Lines                []LineQuote
	ShippingFee          int64
	SubmittedShippingFee int64
	SubmittedTotal       int64
}

// TotalMismatchDetail is returned to callers when the submitted amounts are stale.
type TotalMismatchDetail struct {
	ExpectedTotal        int64 `json:"expected_total"`
	SubmittedTotal       int64 `json:"submitted_total"`
	ExpectedShippingFee  int64 `json:"expected_shipping_fee"`
	SubmittedShippingFee int64 `json:"submitted_shipping_fee"`
}

// Subtotal sums the priced lines.
func (q Quote) Subtotal() int64 {
	lines := make([]int64, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, money.LineTotal(l.UnitPrice, l.Quantity))
	}
	return money.Sum(lines...)
}

// Total is subtotal plus the server's shipping fee.
func (q Quote) Total() int64 {
	return money.Sum(q.Subtotal(), q.ShippingFee)
}

// ValidateQuote ensures the client priced the order the way the server would.
func ValidateQuote(q Quote) error {
	expected := q.Total()
	if expected == q.SubmittedTotal && q.ShippingFee == q.SubmittedShippingFee {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "order total no longer matches current prices").WithDetails(TotalMismatchDetail{
		ExpectedTotal:        expected,
		SubmittedTotal:       q.SubmittedTotal,
		ExpectedShippingFee:  q.ShippingFee,
		SubmittedShippingFee: q.SubmittedShippingFee,
	})
}
