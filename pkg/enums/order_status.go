package enums

import "fmt"

// OrderStatus tracks the lifecycle of a per-seller order.
type OrderStatus string

const (
	OrderStatusUnpaid        OrderStatus = "UNPAID"
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusPreparing     OrderStatus = "PREPARING"
	OrderStatusShipping      OrderStatus = "SHIPPING"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusRejected      OrderStatus = "REJECTED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusRequireCancel OrderStatus = "REQUIRE_CANCEL"
	OrderStatusRefunded      OrderStatus = "REFUNDED"
	OrderStatusRequireRefund OrderStatus = "REQUIRE_REFUND"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusUnpaid,
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusShipping,
	OrderStatusCompleted,
	OrderStatusRejected,
	OrderStatusCancelled,
	OrderStatusRequireCancel,
	OrderStatusRefunded,
	OrderStatusRequireRefund,
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no actor can move the order further.
// COMPLETED is terminal for fulfillment but still accepts reviews and refund requests.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRejected, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
