// Package stock bounds cart and order quantities by available stock.
package stock

import (
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxQuantity is the per-line ceiling regardless of stock.
const MaxQuantity = 99

// MinQuantity is the smallest quantity a line may hold.
const MinQuantity = 1

// CanSetQuantity reports whether current+delta is a legal quantity for a line
// whose product has available units in stock.
func CanSetQuantity(current, delta, available int) bool {
	next := current + delta
	return next >= MinQuantity && next <= available && next <= MaxQuantity
}

// MaxAllowed is the largest quantity a line may hold given the available stock.
func MaxAllowed(available int) int {
	if available < 0 {
		return 0
	}
	if available > MaxQuantity {
		return MaxQuantity
	}
	return available
}

// Conflict is the detail payload attached to stock conflict errors.
type Conflict struct {
	RequestedQuantity int `json:"requested_quantity"`
	MaxQuantity       int `json:"max_quantity"`
}

// Check is CanSetQuantity returning a typed error for the rejected case.
// Lowering below MinQuantity is a validation failure rather than a stock conflict.
func Check(current, delta, available int) error {
	if CanSetQuantity(current, delta, available) {
		return nil
	}
	next := current + delta
	if next < MinQuantity {
		return pkgerrors.Field("quantity", "quantity must be at least 1")
	}
	return ConflictError(next, available)
}

// ConflictError builds the stock conflict error for a requested quantity.
func ConflictError(requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeStockConflict, "requested quantity exceeds available stock").
		WithDetails(Conflict{RequestedQuantity: requested, MaxQuantity: MaxAllowed(available)})
}

// ConflictFrom extracts the conflict payload from err, if it carries one.
func ConflictFrom(err error) (Conflict, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStockConflict {
		return Conflict{}, false
	}
	switch d := typed.Details().(type) {
	case Conflict:
		return d, true
	case *Conflict:
		return *d, d != nil
	case map[string]any:
		return conflictFromMap(d), true
	}
	return Conflict{}, true
}

func conflictFromMap(m map[string]any) Conflict {
	var c Conflict
	if v, ok := m["max_quantity"].(float64); ok {
		c.MaxQuantity = int(v)
	}
	if v, ok := m["requested_quantity"].(float64); ok {
		c.RequestedQuantity = int(v)
	}
	return c
}
