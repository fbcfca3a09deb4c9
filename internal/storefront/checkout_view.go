package storefront

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ErrBusy is returned while an identical submission is still in flight.
var ErrBusy = pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in progress")

type checkoutAPI interface {
	ConsumeIntent(ctx context.Context, intentID uuid.UUID) (checkout.Intent, error)
	PreviewCheckout(ctx context.Context, selected []uuid.UUID) (*checkout.Preview, error)
	CreateOrders(ctx context.Context, requests []checkout.CreateOrderRequest, idempotencyKey string) (*checkout.CreateOrdersResponse, error)
}

// CheckoutView is the confirmation page: the selected lines split into one
// bucket per seller, the buyer's shared choices, and the submit button.
type CheckoutView struct {
	api         checkoutAPI
	shippingFee int64
	newKey      func() string

	mu         sync.Mutex
	groups     []cart.Group
	selected   cart.ItemSet
	input      checkout.ConfirmInput
	submitting bool
	// pendingKey survives a call whose result never arrived so a retry can be
	// replayed by the server instead of creating orders twice.
	pendingKey string
}

func NewCheckoutView(api checkoutAPI, shippingFee int64) *CheckoutView {
	return &CheckoutView{
		api:         api,
		shippingFee: shippingFee,
		newKey:      uuid.NewString,
		selected:    cart.ItemSet{},
	}
}

// Open consumes the hand-off from the cart and loads the selected lines as the
// server currently sees them. An intent can be opened once.
func (v *CheckoutView) Open(ctx context.Context, intentID uuid.UUID) error {
	intent, err := v.api.ConsumeIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if len(intent.SelectedItemIDs) == 0 {
		return checkout.ErrEmptySelection()
	}
	preview, err := v.api.PreviewCheckout(ctx, intent.SelectedItemIDs)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.groups = preview.Groups
	v.selected = cart.NewItemSet(intent.SelectedItemIDs...)
	v.pendingKey = ""
	return nil
}

// Plan prices the page with the locally known shipping fee.
func (v *CheckoutView) Plan() checkout.Plan {
	v.mu.Lock()
	defer v.mu.Unlock()
	return checkout.Decompose(v.groups, v.selected, v.shippingFee)
}

func (v *CheckoutView) SetAddress(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input.AddressID = &id
	v.pendingKey = ""
}

func (v *CheckoutView) SetNote(note string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input.Note = note
	v.pendingKey = ""
}

func (v *CheckoutView) SetPaymentMethod(method enums.PaymentMethod) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input.PaymentMethod = method
	v.pendingKey = ""
}

// Submitting reports whether the submit button should render disabled.
func (v *CheckoutView) Submitting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitting
}

// Submit creates one order per bucket. Validation failures return before any
// call. When some buckets fail, the outcome lists both sides and the page keeps
// only the failed lines so the buyer can retry them.
func (v *CheckoutView) Submit(ctx context.Context) (checkout.Outcome, error) {
	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return checkout.Outcome{}, ErrBusy
	}
	plan, requests, err := checkout.Confirm(v.groups, v.selected, v.shippingFee, v.input)
	if err != nil {
		v.mu.Unlock()
		return checkout.Outcome{}, err
	}
	if v.pendingKey == "" {
		v.pendingKey = v.newKey()
	}
	key := v.pendingKey
	v.submitting = true
	v.mu.Unlock()

	resp, err := v.api.CreateOrders(ctx, requests, key)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = false
	if err != nil {
		if answered(err) {
			v.pendingKey = ""
		}
		return checkout.FailAll(plan, err), err
	}
	v.pendingKey = ""

	outcome := checkout.NewOutcome(plan, *resp)
	v.selected = cart.NewItemSet(outcome.FailedItemIDs()...)
	return outcome, nil
}

// answered reports whether err is a decided server reply. Transport failures
// and 5xx replies leave the outcome unknown.
func answered(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	return pkgerrors.MetadataFor(typed.Code()).HTTPStatus < http.StatusInternalServerError
}
