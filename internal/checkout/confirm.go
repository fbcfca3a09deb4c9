package checkout

import "github.com/angelmondragon/storefront-backend/internal/cart"

// Confirm runs the whole confirmation step: the address is checked before
// anything is decomposed, then an empty plan is refused, then one request per
// bucket is built.
func Confirm(groups []cart.Group, selected cart.ItemSet, shippingFee int64, in ConfirmInput) (Plan, []CreateOrderRequest, error) {
	if err := in.validate(); err != nil {
		return Plan{}, nil, err
	}
	plan := Decompose(groups, selected, shippingFee)
	requests, err := plan.OrderRequests(in)
	if err != nil {
		return plan, nil, err
	}
	return plan, requests, nil
}
