package storefront

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type ordersAPI interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*orders.OrderView, error)
	TransitionOrder(ctx context.Context, orderID uuid.UUID, req orders.TransitionRequest, idempotencyKey string) (*orders.OrderView, error)
}

// OrderActions drives the action buttons of an order page for one role.
// Transitions the local state already rules out are refused without a call.
type OrderActions struct {
	api       ordersAPI
	role      enums.ActorRole
	lifecycle orders.Lifecycle
	newKey    func() string

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewOrderActions(api ordersAPI, role enums.ActorRole) *OrderActions {
	return &OrderActions{
		api:       api,
		role:      role,
		lifecycle: orders.NewLifecycle(),
		newKey:    uuid.NewString,
		inFlight:  make(map[uuid.UUID]struct{}),
	}
}

// Available lists the buttons to enable for the order.
func (a *OrderActions) Available(view orders.OrderView) []enums.OrderAction {
	return a.lifecycle.Allowed(view.State(), a.role)
}

// NeedsReason reports whether the action opens a reason prompt.
func (a *OrderActions) NeedsReason(action enums.OrderAction) bool {
	return a.lifecycle.NeedsReason(action)
}

// NeedsEvidence reports whether the action requires attachments.
func (a *OrderActions) NeedsEvidence(action enums.OrderAction) bool {
	return a.lifecycle.NeedsEvidence(action)
}

// Busy reports whether an action on the order is in flight.
func (a *OrderActions) Busy(orderID uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.inFlight[orderID]
	return ok
}

// Perform runs action on the order shown in view. On failure view is
// returned unchanged together with the error.
func (a *OrderActions) Perform(ctx context.Context, view orders.OrderView, action enums.OrderAction, reason string, evidence []string) (orders.OrderView, error) {
	if _, err := a.lifecycle.Apply(view.State(), orders.Command{
		Action:   action,
		Actor:    a.role,
		Reason:   reason,
		Evidence: evidence,
	}); err != nil {
		return view, err
	}

	a.mu.Lock()
	if _, busy := a.inFlight[view.ID]; busy {
		a.mu.Unlock()
		return view, ErrBusy
	}
	a.inFlight[view.ID] = struct{}{}
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.inFlight, view.ID)
		a.mu.Unlock()
	}()

	updated, err := a.api.TransitionOrder(ctx, view.ID, orders.TransitionRequest{
		Action:   action,
		Reason:   reason,
		Evidence: evidence,
	}, a.newKey())
	if err != nil {
		return view, err
	}
	return *updated, nil
}

// Refresh reloads the order from the server.
func (a *OrderActions) Refresh(ctx context.Context, orderID uuid.UUID) (orders.OrderView, error) {
	view, err := a.api.GetOrder(ctx, orderID)
	if err != nil {
		return orders.OrderView{}, err
	}
	return *view, nil
}
