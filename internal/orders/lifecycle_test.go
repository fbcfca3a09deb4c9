package orders

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type legalMove struct {
	action enums.OrderAction
	from   enums.OrderStatus
	actor  enums.ActorRole
	to     enums.OrderStatus
}

// legalMoves is the complete transition table. deny_cancel targets are listed per pre-cancel state.
var legalMoves = []legalMove{
	{enums.ActionConfirmPayment, enums.OrderStatusUnpaid, enums.ActorPaymentChannel, enums.OrderStatusPending},
	{enums.ActionAccept, enums.OrderStatusPending, enums.ActorSeller, enums.OrderStatusPreparing},
	{enums.ActionReject, enums.OrderStatusPending, enums.ActorSeller, enums.OrderStatusRejected},
	{enums.ActionShip, enums.OrderStatusPreparing, enums.ActorSeller, enums.OrderStatusShipping},
	{enums.ActionConfirmDelivery, enums.OrderStatusShipping, enums.ActorSeller, enums.OrderStatusCompleted},
	{enums.ActionConfirmDelivery, enums.OrderStatusShipping, enums.ActorSystem, enums.OrderStatusCompleted},
	{enums.ActionRequestCancel, enums.OrderStatusUnpaid, enums.ActorBuyer, enums.OrderStatusRequireCancel},
	{enums.ActionRequestCancel, enums.OrderStatusPending, enums.ActorBuyer, enums.OrderStatusRequireCancel},
	{enums.ActionApproveCancel, enums.OrderStatusRequireCancel, enums.ActorSeller, enums.OrderStatusCancelled},
	{enums.ActionDenyCancel, enums.OrderStatusRequireCancel, enums.ActorSeller, ""},
	{enums.ActionRequestRefund, enums.OrderStatusCompleted, enums.ActorBuyer, enums.OrderStatusRequireRefund},
	{enums.ActionApproveRefund, enums.OrderStatusRequireRefund, enums.ActorSeller, enums.OrderStatusRefunded},
	{enums.ActionApproveRefund, enums.OrderStatusRequireRefund, enums.ActorAdmin, enums.OrderStatusRefunded},
	{enums.ActionDenyRefund, enums.OrderStatusRequireRefund, enums.ActorSeller, enums.OrderStatusCompleted},
	{enums.ActionDenyRefund, enums.OrderStatusRequireRefund, enums.ActorAdmin, enums.OrderStatusCompleted},
}

var allActors = []enums.ActorRole{
	enums.ActorBuyer, enums.ActorSeller, enums.ActorAdmin, enums.ActorPaymentChannel, enums.ActorSystem,
}

func isLegal(action enums.OrderAction, from enums.OrderStatus, actor enums.ActorRole) bool {
	for _, m := range legalMoves {
		if m.action == action && m.from == from && m.actor == actor {
			return true
		}
	}
	return false
}

func completeCommand(action enums.OrderAction, actor enums.ActorRole) Command {
	return Command{Action: action, Actor: actor, Reason: "because", Evidence: []string{"media/1.jpg"}}
}

func statusPtr(s enums.OrderStatus) *enums.OrderStatus { return &s }

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(enums.PaymentMethodBankTransfer); got != enums.OrderStatusUnpaid {
		t.Fatalf("bank transfer should start UNPAID, got %s", got)
	}
	if got := InitialStatus(enums.PaymentMethodCOD); got != enums.OrderStatusPending {
		t.Fatalf("cod should start PENDING, got %s", got)
	}
}

func TestLegalMoves(t *testing.T) {
	l := NewLifecycle()
	for _, m := range legalMoves {
		if m.to == "" {
			continue
		}
		next, err := l.Apply(State{Status: m.from}, completeCommand(m.action, m.actor))
		if err != nil {
			t.Fatalf("%s by %s from %s: unexpected error %v", m.action, m.actor, m.from, err)
		}
		if next.Status != m.to {
			t.Fatalf("%s by %s from %s: expected %s, got %s", m.action, m.actor, m.from, m.to, next.Status)
		}
	}
}

func TestCancelDeniedRestoresPendingNotUnpaid(t *testing.T) {
	l := NewLifecycle()
	s := State{Status: enums.OrderStatusPending}

	s, err := l.Apply(s, Command{Action: enums.ActionRequestCancel, Actor: enums.ActorBuyer, Reason: "changed my mind"})
	if err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	if s.Status != enums.OrderStatusRequireCancel {
		t.Fatalf("expected REQUIRE_CANCEL, got %s", s.Status)
	}
	if s.PreCancelStatus == nil || *s.PreCancelStatus != enums.OrderStatusPending {
		t.Fatalf("expected pre-cancel PENDING, got %v", s.PreCancelStatus)
	}

	s, err = l.Apply(s, Command{Action: enums.ActionDenyCancel, Actor: enums.ActorSeller})
	if err != nil {
		t.Fatalf("deny cancel: %v", err)
	}
	if s.Status != enums.OrderStatusPending {
		t.Fatalf("expected PENDING after denial, got %s", s.Status)
	}
	if s.PreCancelStatus != nil {
		t.Fatalf("pre-cancel status should be cleared, got %v", *s.PreCancelStatus)
	}
}

func TestCancelDeniedRestoresUnpaid(t *testing.T) {
	l := NewLifecycle()
	s, err := l.Apply(State{Status: enums.OrderStatusUnpaid}, Command{Action: enums.ActionRequestCancel, Actor: enums.ActorBuyer, Reason: "wrong size"})
	if err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	s, err = l.Apply(s, Command{Action: enums.ActionDenyCancel, Actor: enums.ActorSeller})
	if err != nil {
		t.Fatalf("deny cancel: %v", err)
	}
	if s.Status != enums.OrderStatusUnpaid {
		t.Fatalf("expected UNPAID after denial, got %s", s.Status)
	}
}

func TestDenyCancelWithoutRecordFallsBackToPending(t *testing.T) {
	next, err := NewLifecycle().Apply(State{Status: enums.OrderStatusRequireCancel}, Command{Action: enums.ActionDenyCancel, Actor: enums.ActorSeller})
	if err != nil {
		t.Fatalf("deny cancel: %v", err)
	}
	if next.Status != enums.OrderStatusPending {
		t.Fatalf("expected PENDING fallback, got %s", next.Status)
	}
}

func TestApplyErrorCodes(t *testing.T) {
	l := NewLifecycle()
	cases := []struct {
		name  string
		state State
		cmd   Command
		code  pkgerrors.Code
	}{
		{"unknown action", State{Status: enums.OrderStatusPending}, Command{Action: "teleport", Actor: enums.ActorSeller}, pkgerrors.CodeValidation},
		{"wrong state", State{Status: enums.OrderStatusShipping}, Command{Action: enums.ActionAccept, Actor: enums.ActorSeller}, pkgerrors.CodeInvalidTransition},
		{"terminal", State{Status: enums.OrderStatusCancelled}, Command{Action: enums.ActionRequestCancel, Actor: enums.ActorBuyer, Reason: "x"}, pkgerrors.CodeInvalidTransition},
		{"wrong actor", State{Status: enums.OrderStatusPending}, Command{Action: enums.ActionAccept, Actor: enums.ActorBuyer}, pkgerrors.CodeForbidden},
		{"blank reject reason", State{Status: enums.OrderStatusPending}, Command{Action: enums.ActionReject, Actor: enums.ActorSeller, Reason: "   "}, pkgerrors.CodeValidation},
		{"blank cancel reason", State{Status: enums.OrderStatusPending}, Command{Action: enums.ActionRequestCancel, Actor: enums.ActorBuyer}, pkgerrors.CodeValidation},
		{"refund without evidence", State{Status: enums.OrderStatusCompleted}, Command{Action: enums.ActionRequestRefund, Actor: enums.ActorBuyer, Reason: "broken", Evidence: []string{" "}}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		next, err := l.Apply(tc.state, tc.cmd)
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
		if next.Status != tc.state.Status {
			t.Fatalf("%s: state changed to %s on error", tc.name, next.Status)
		}
	}
}

func TestAllowedPerActor(t *testing.T) {
	l := NewLifecycle()
	pending := State{Status: enums.OrderStatusPending}

	seller := l.Allowed(pending, enums.ActorSeller)
	if len(seller) != 2 || seller[0] != enums.ActionAccept || seller[1] != enums.ActionReject {
		t.Fatalf("unexpected seller actions %v", seller)
	}
	buyer := l.Allowed(pending, enums.ActorBuyer)
	if len(buyer) != 1 || buyer[0] != enums.ActionRequestCancel {
		t.Fatalf("unexpected buyer actions %v", buyer)
	}
	if got := l.Allowed(State{Status: enums.OrderStatusRefunded}, enums.ActorAdmin); len(got) != 0 {
		t.Fatalf("refunded orders take no actions, got %v", got)
	}
}

func TestPaymentStatusAfter(t *testing.T) {
	if got := PaymentStatusAfter(enums.PaymentMethodBankTransfer, enums.PaymentStatusUnpaid, enums.ActionConfirmPayment, enums.OrderStatusPending); got != enums.PaymentStatusPaid {
		t.Fatalf("confirm payment should mark paid, got %s", got)
	}
	if got := PaymentStatusAfter(enums.PaymentMethodCOD, enums.PaymentStatusUnpaid, enums.ActionConfirmDelivery, enums.OrderStatusCompleted); got != enums.PaymentStatusPaid {
		t.Fatalf("cod delivery should mark paid, got %s", got)
	}
	if got := PaymentStatusAfter(enums.PaymentMethodCOD, enums.PaymentStatusUnpaid, enums.ActionShip, enums.OrderStatusShipping); got != enums.PaymentStatusUnpaid {
		t.Fatalf("shipping should not settle cod, got %s", got)
	}
}

func TestUnlistedTransitionsAreRejected(t *testing.T) {
	l := NewLifecycle()
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(enums.OrderStatuses()).Draw(t, "from")
		action := rapid.SampledFrom(enums.OrderActions()).Draw(t, "action")
		actor := rapid.SampledFrom(allActors).Draw(t, "actor")

		state := State{Status: from}
		if from == enums.OrderStatusRequireCancel {
			state.PreCancelStatus = statusPtr(rapid.SampledFrom([]enums.OrderStatus{enums.OrderStatusUnpaid, enums.OrderStatusPending}).Draw(t, "pre"))
		}

		next, err := l.Apply(state, completeCommand(action, actor))
		if isLegal(action, from, actor) {
			if err != nil {
				t.Fatalf("legal move %s/%s/%s rejected: %v", action, from, actor, err)
			}
			if !l.Can(state, actor, action) {
				t.Fatalf("Can disagrees with Apply for %s/%s/%s", action, from, actor)
			}
			return
		}
		if err == nil {
			t.Fatalf("unlisted move %s/%s/%s accepted, now %s", action, from, actor, next.Status)
		}
		if next.Status != from {
			t.Fatalf("rejected move changed state %s -> %s", from, next.Status)
		}
		if l.Can(state, actor, action) {
			t.Fatalf("Can allows unlisted move %s/%s/%s", action, from, actor)
		}
	})
}

func TestCancelRequestResolvesToCancelledOrPrior(t *testing.T) {
	l := NewLifecycle()
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.SampledFrom([]enums.OrderStatus{enums.OrderStatusUnpaid, enums.OrderStatusPending}).Draw(t, "start")
		resolve := rapid.SampledFrom([]enums.OrderAction{enums.ActionApproveCancel, enums.ActionDenyCancel}).Draw(t, "resolve")

		s, err := l.Apply(State{Status: start}, Command{Action: enums.ActionRequestCancel, Actor: enums.ActorBuyer, Reason: "r"})
		if err != nil {
			t.Fatalf("request cancel: %v", err)
		}
		s, err = l.Apply(s, Command{Action: resolve, Actor: enums.ActorSeller})
		if err != nil {
			t.Fatalf("%s: %v", resolve, err)
		}
		if s.Status != enums.OrderStatusCancelled && s.Status != start {
			t.Fatalf("cancel request from %s resolved to %s", start, s.Status)
		}
		if resolve == enums.ActionApproveCancel && s.Status != enums.OrderStatusCancelled {
			t.Fatalf("approval must cancel, got %s", s.Status)
		}
		if resolve == enums.ActionDenyCancel && s.Status != start {
			t.Fatalf("denial must restore %s, got %s", start, s.Status)
		}
	})
}

func TestRandomWalksStayInKnownStates(t *testing.T) {
	l := NewLifecycle()
	rapid.Check(t, func(t *rapid.T) {
		method := rapid.SampledFrom([]enums.PaymentMethod{enums.PaymentMethodCOD, enums.PaymentMethodBankTransfer}).Draw(t, "method")
		s := State{Status: InitialStatus(method)}
		steps := rapid.IntRange(0, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := s.Status
			action := rapid.SampledFrom(enums.OrderActions()).Draw(t, "action")
			actor := rapid.SampledFrom(allActors).Draw(t, "actor")
			next, err := l.Apply(s, completeCommand(action, actor))
			if err != nil {
				if next.Status != before {
					t.Fatalf("error changed state")
				}
				continue
			}
			if !next.Status.IsValid() {
				t.Fatalf("reached unknown status %q", next.Status)
			}
			if before.IsTerminal() && !(before == enums.OrderStatusCompleted && action == enums.ActionRequestRefund) {
				t.Fatalf("terminal %s moved via %s", before, action)
			}
			s = next
		}
	})
}
