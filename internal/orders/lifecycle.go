package orders

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// State is the part of an order the lifecycle reads and writes.
type State struct {
	Status enums.OrderStatus
	// PreCancelStatus is set while a cancellation request is pending.
	PreCancelStatus *enums.OrderStatus
}

// Command is one actor asking for one action.
type Command struct {
	Action   enums.OrderAction
	Actor    enums.ActorRole
	Reason   string
	Evidence []string
}

// TransitionDetail is attached to invalid transition errors.
type TransitionDetail struct {
	Action enums.OrderAction `json:"action"`
	From   enums.OrderStatus `json:"from"`
}

type rule struct {
	from          []enums.OrderStatus
	actors        []enums.ActorRole
	to            enums.OrderStatus
	needsReason   bool
	needsEvidence bool
}

// Lifecycle is the order state machine. The zero value is not usable; use NewLifecycle.
type Lifecycle struct {
	rules map[enums.OrderAction]rule
}

// NewLifecycle returns the marketplace order lifecycle.
func NewLifecycle() Lifecycle {
	return Lifecycle{rules: map[enums.OrderAction]rule{
		enums.ActionConfirmPayment: {
			from:   []enums.OrderStatus{enums.OrderStatusUnpaid},
			actors: []enums.ActorRole{enums.ActorPaymentChannel},
			to:     enums.OrderStatusPending,
		},
		enums.ActionAccept: {
			from:   []enums.OrderStatus{enums.OrderStatusPending},
			actors: []enums.ActorRole{enums.ActorSeller},
			to:     enums.OrderStatusPreparing,
		},
		enums.ActionReject: {
			from:        []enums.OrderStatus{enums.OrderStatusPending},
			actors:      []enums.ActorRole{enums.ActorSeller},
			to:          enums.OrderStatusRejected,
			needsReason: true,
		},
		enums.ActionShip: {
			from:   []enums.OrderStatus{enums.OrderStatusPreparing},
			actors: []enums.ActorRole{enums.ActorSeller},
			to:     enums.OrderStatusShipping,
		},
		enums.ActionConfirmDelivery: {
			from:   []enums.OrderStatus{enums.OrderStatusShipping},
			actors: []enums.ActorRole{enums.ActorSeller, enums.ActorSystem},
			to:     enums.OrderStatusCompleted,
		},
		enums.ActionRequestCancel: {
			from:        []enums.OrderStatus{enums.OrderStatusUnpaid, enums.OrderStatusPending},
			actors:      []enums.ActorRole{enums.ActorBuyer},
			to:          enums.OrderStatusRequireCancel,
			needsReason: true,
		},
		enums.ActionApproveCancel: {
			from:   []enums.OrderStatus{enums.OrderStatusRequireCancel},
			actors: []enums.ActorRole{enums.ActorSeller},
			to:     enums.OrderStatusCancelled,
		},
		// deny_cancel has no fixed target; see restorePreCancel.
		enums.ActionDenyCancel: {
			from:   []enums.OrderStatus{enums.OrderStatusRequireCancel},
			actors: []enums.ActorRole{enums.ActorSeller},
		},
		enums.ActionRequestRefund: {
			from:          []enums.OrderStatus{enums.OrderStatusCompleted},
			actors:        []enums.ActorRole{enums.ActorBuyer},
			to:            enums.OrderStatusRequireRefund,
			needsReason:   true,
			needsEvidence: true,
		},
		enums.ActionApproveRefund: {
			from:   []enums.OrderStatus{enums.OrderStatusRequireRefund},
			actors: []enums.ActorRole{enums.ActorSeller, enums.ActorAdmin},
			to:     enums.OrderStatusRefunded,
		},
		enums.ActionDenyRefund: {
			from:   []enums.OrderStatus{enums.OrderStatusRequireRefund},
			actors: []enums.ActorRole{enums.ActorSeller, enums.ActorAdmin},
			to:     enums.OrderStatusCompleted,
		},
	}}
}

// InitialStatus is where a new order starts for the given payment method.
func InitialStatus(method enums.PaymentMethod) enums.OrderStatus {
	if method.RequiresPrepayment() {
		return enums.OrderStatusUnpaid
	}
	return enums.OrderStatusPending
}

// Apply runs cmd against s. On error the returned state equals s.
// Checks run in order: known action, source state, actor, reason, evidence.
func (l Lifecycle) Apply(s State, cmd Command) (State, error) {
	r, ok := l.rules[cmd.Action]
	if !ok {
		return s, pkgerrors.Field("action", "unknown order action")
	}
	if !containsStatus(r.from, s.Status) {
		return s, invalidTransition(cmd.Action, s.Status)
	}
	if !containsActor(r.actors, cmd.Actor) {
		return s, pkgerrors.New(pkgerrors.CodeForbidden, "actor may not perform this action").
			WithDetails(map[string]string{"action": string(cmd.Action), "actor": string(cmd.Actor)})
	}
	if r.needsReason && strings.TrimSpace(cmd.Reason) == "" {
		return s, pkgerrors.Field("reason", "a reason is required")
	}
	if r.needsEvidence && len(nonBlank(cmd.Evidence)) == 0 {
		return s, pkgerrors.Field("evidence", "attach at least one piece of evidence")
	}

	switch cmd.Action {
	case enums.ActionRequestCancel:
		from := s.Status
		return State{Status: r.to, PreCancelStatus: &from}, nil
	case enums.ActionDenyCancel:
		return State{Status: restorePreCancel(s.PreCancelStatus)}, nil
	}
	return State{Status: r.to}, nil
}

// Can reports whether actor may run action from s, ignoring reason and evidence.
func (l Lifecycle) Can(s State, actor enums.ActorRole, action enums.OrderAction) bool {
	r, ok := l.rules[action]
	return ok && containsStatus(r.from, s.Status) && containsActor(r.actors, actor)
}

// Allowed lists the actions actor may take from s.
func (l Lifecycle) Allowed(s State, actor enums.ActorRole) []enums.OrderAction {
	allowed := []enums.OrderAction{}
	for _, action := range enums.OrderActions() {
		if l.Can(s, actor, action) {
			allowed = append(allowed, action)
		}
	}
	return allowed
}

// NeedsReason reports whether action must carry a reason.
func (l Lifecycle) NeedsReason(action enums.OrderAction) bool {
	return l.rules[action].needsReason
}

// NeedsEvidence reports whether action must carry evidence.
func (l Lifecycle) NeedsEvidence(action enums.OrderAction) bool {
	return l.rules[action].needsEvidence
}

// PaymentStatusAfter is the payment status once an order reaches to.
func PaymentStatusAfter(method enums.PaymentMethod, current enums.PaymentStatus, action enums.OrderAction, to enums.OrderStatus) enums.PaymentStatus {
	if action == enums.ActionConfirmPayment {
		return enums.PaymentStatusPaid
	}
	if method == enums.PaymentMethodCOD && to == enums.OrderStatusCompleted {
		return enums.PaymentStatusPaid
	}
	return current
}

// ReleasesStock reports whether reaching status returns the reserved units to stock.
func ReleasesStock(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusCancelled, enums.OrderStatusRejected, enums.OrderStatusRefunded:
		return true
	}
	return false
}

// ErrInvalidTransition builds the error returned for an action not allowed from status.
func ErrInvalidTransition(action enums.OrderAction, status enums.OrderStatus) error {
	return invalidTransition(action, status)
}

func invalidTransition(action enums.OrderAction, status enums.OrderStatus) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "action not allowed in current order status").
		WithDetails(TransitionDetail{Action: action, From: status})
}

func restorePreCancel(pre *enums.OrderStatus) enums.OrderStatus {
	if pre != nil && (*pre == enums.OrderStatusUnpaid || *pre == enums.OrderStatusPending) {
		return *pre
	}
	return enums.OrderStatusPending
}

func containsStatus(list []enums.OrderStatus, s enums.OrderStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsActor(list []enums.ActorRole, a enums.ActorRole) bool {
	for _, candidate := range list {
		if candidate == a {
			return true
		}
	}
	return false
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
