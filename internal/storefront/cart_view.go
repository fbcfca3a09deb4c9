package storefront

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/language"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/stock"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type cartAPI interface {
	GetCart(ctx context.Context) ([]cart.Group, error)
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*cart.LineItem, error)
	DeleteCartItem(ctx context.Context, itemID uuid.UUID) error
	CreateIntent(ctx context.Context, selected []uuid.UUID) (checkout.Intent, error)
}

// CartView is the buyer's cart page. Edits are applied locally first and
// rolled back when the server refuses them. Edits to the same line run one at
// a time; edits to different lines run concurrently.
type CartView struct {
	api cartAPI

	mu    sync.Mutex
	cart  *cart.Cart
	locks map[uuid.UUID]*semaphore.Weighted
	busy  map[uuid.UUID]int
}

func NewCartView(api cartAPI) *CartView {
	return &CartView{
		api:   api,
		cart:  cart.New(nil),
		locks: make(map[uuid.UUID]*semaphore.Weighted),
		busy:  make(map[uuid.UUID]int),
	}
}

// Load replaces the local cart with the server's. The selection survives for
// lines that still exist.
func (v *CartView) Load(ctx context.Context) error {
	groups, err := v.api.GetCart(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cart.Replace(cart.Flatten(groups))
	return nil
}

func (v *CartView) Groups() []cart.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Groups()
}

func (v *CartView) Item(id uuid.UUID) (cart.LineItem, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Item(id)
}

// IsBusy reports whether an edit of the line is in flight.
func (v *CartView) IsBusy(id uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy[id] > 0
}

func (v *CartView) ToggleItem(id uuid.UUID) {
	v.withSelection(func(s *cart.Selection) { s.ToggleItem(id) })
}

func (v *CartView) ToggleGroup(sellerID uuid.UUID) {
	v.withSelection(func(s *cart.Selection) { s.ToggleGroup(sellerID) })
}

func (v *CartView) ToggleAll() {
	v.withSelection(func(s *cart.Selection) { s.ToggleAll() })
}

func (v *CartView) GroupState(sellerID uuid.UUID) enums.SelectionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Selection().GroupState(sellerID)
}

func (v *CartView) OverallState() enums.SelectionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Selection().OverallState()
}

func (v *CartView) SelectedIDs() []uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Selection().IDs()
}

// Preview prices the current selection locally.
func (v *CartView) Preview(shippingFee int64) checkout.Plan {
	v.mu.Lock()
	defer v.mu.Unlock()
	return checkout.Decompose(v.cart.Groups(), v.cart.Selection().Set(), shippingFee)
}

// Increment adds one unit to the line.
func (v *CartView) Increment(ctx context.Context, id uuid.UUID) (cart.LineItem, error) {
	return v.ChangeQuantity(ctx, id, 1)
}

// Decrement removes one unit; the last unit is removed with Remove, not here.
func (v *CartView) Decrement(ctx context.Context, id uuid.UUID) (cart.LineItem, error) {
	return v.ChangeQuantity(ctx, id, -1)
}

// ChangeQuantity applies delta locally within the stock guard, then asks the
// server. A guard refusal never reaches the network.
func (v *CartView) ChangeQuantity(ctx context.Context, id uuid.UUID, delta int) (cart.LineItem, error) {
	cmd := &cart.ChangeQuantity{ID: id, Delta: delta}
	var out cart.LineItem
	err := v.run(ctx, cmd, func(ctx context.Context) error {
		item, err := v.api.UpdateCartItem(ctx, id, cmd.Target())
		if err != nil {
			return err
		}
		v.mu.Lock()
		v.cart.SetQuantity(id, item.Quantity)
		v.mu.Unlock()
		out = *item
		return nil
	})
	if err != nil {
		item, _ := v.Item(id)
		return item, err
	}
	return out, nil
}

// Remove deletes the line locally and on the server, putting it back where it
// was if the server refuses.
func (v *CartView) Remove(ctx context.Context, id uuid.UUID) error {
	cmd := &cart.RemoveItem{ID: id}
	return v.run(ctx, cmd, func(ctx context.Context) error {
		return v.api.DeleteCartItem(ctx, id)
	})
}

// ProceedToCheckout hands the selection to the checkout view. An empty
// selection is refused without a network call.
func (v *CartView) ProceedToCheckout(ctx context.Context) (checkout.Intent, error) {
	selected := v.SelectedIDs()
	if len(selected) == 0 {
		return checkout.Intent{}, checkout.ErrEmptySelection()
	}
	return v.api.CreateIntent(ctx, selected)
}

// ApplyOutcome drops the lines that became orders. Lines of failed buckets
// stay in the cart and stay selected.
func (v *CartView) ApplyOutcome(outcome checkout.Outcome) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cart.RemoveAll(outcome.SucceededItemIDs())
	v.cart.Selection().Select(outcome.FailedItemIDs()...)
}

func (v *CartView) run(ctx context.Context, cmd cart.Command, submit func(context.Context) error) error {
	sem := v.lockFor(cmd.ItemID())
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer sem.Release(1)

	v.mu.Lock()
	if err := cmd.Apply(v.cart); err != nil {
		v.mu.Unlock()
		return err
	}
	v.busy[cmd.ItemID()]++
	v.mu.Unlock()

	err := submit(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy[cmd.ItemID()]--; v.busy[cmd.ItemID()] <= 0 {
		delete(v.busy, cmd.ItemID())
	}
	if err != nil {
		cmd.Revert(v.cart)
	}
	return err
}

func (v *CartView) lockFor(id uuid.UUID) *semaphore.Weighted {
	v.mu.Lock()
	defer v.mu.Unlock()
	sem, ok := v.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		v.locks[id] = sem
	}
	return sem
}

func (v *CartView) withSelection(fn func(*cart.Selection)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.cart.Selection())
}

// Notice renders the message shown to the buyer for err, naming the maximum
// quantity on stock conflicts.
func Notice(tag language.Tag, err error) string {
	if err == nil {
		return ""
	}
	if c, ok := stock.ConflictFrom(err); ok {
		return stock.ConflictMessage(tag, c.MaxQuantity)
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage
}
