package enums

import "fmt"

// OrderAction is a named lifecycle trigger submitted by an actor.
type OrderAction string

const (
	ActionConfirmPayment  OrderAction = "confirm_payment"
	ActionAccept          OrderAction = "accept"
	ActionReject          OrderAction = "reject"
	ActionShip            OrderAction = "ship"
	ActionConfirmDelivery OrderAction = "confirm_delivery"
	ActionRequestCancel   OrderAction = "request_cancel"
	ActionApproveCancel   OrderAction = "approve_cancel"
	ActionDenyCancel      OrderAction = "deny_cancel"
	ActionRequestRefund   OrderAction = "request_refund"
	ActionApproveRefund   OrderAction = "approve_refund"
	ActionDenyRefund      OrderAction = "deny_refund"
)

var validOrderActions = []OrderAction{
	ActionConfirmPayment,
	ActionAccept,
	ActionReject,
	ActionShip,
	ActionConfirmDelivery,
	ActionRequestCancel,
	ActionApproveCancel,
	ActionDenyCancel,
	ActionRequestRefund,
	ActionApproveRefund,
	ActionDenyRefund,
}

// OrderActions returns every action in a stable order.
func OrderActions() []OrderAction {
	out := make([]OrderAction, len(validOrderActions))
	copy(out, validOrderActions)
	return out
}

// String implements fmt.Stringer.
func (a OrderAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known OrderAction.
func (a OrderAction) IsValid() bool {
	for _, candidate := range validOrderActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOrderAction converts raw input into an OrderAction.
func ParseOrderAction(value string) (OrderAction, error) {
	for _, candidate := range validOrderActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order action %q", value)
}
