package cart

import (
	"slices"

	"github.com/angelmondragon/storefront-backend/internal/stock"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// Cart is the buyer's flat list of line items plus the selection over them.
// It is not safe for concurrent use; callers serialize access.
type Cart struct {
	items     []LineItem
	selection *Selection
}

// New builds a cart holding a copy of items.
func New(items []LineItem) *Cart {
	c := &Cart{items: slices.Clone(items)}
	c.selection = &Selection{cart: c, ids: make(ItemSet)}
	return c
}

// Selection returns the selection bound to this cart.
func (c *Cart) Selection() *Selection {
	return c.selection
}

// Items returns a copy of the items in cart order.
func (c *Cart) Items() []LineItem {
	return slices.Clone(c.items)
}

// Groups projects the cart into per-seller groups.
func (c *Cart) Groups() []Group {
	return GroupBySeller(c.items)
}

// Len is the number of line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Item looks up a line item by id.
func (c *Cart) Item(id uuid.UUID) (LineItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Contains reports whether id is a present line item.
func (c *Cart) Contains(id uuid.UUID) bool {
	return c.indexOf(id) >= 0
}

// ChangeQuantity applies delta to the item's quantity if the stock guard allows it.
// A refused change leaves the cart untouched.
func (c *Cart) ChangeQuantity(id uuid.UUID, delta int) (LineItem, error) {
	i := c.indexOf(id)
	if i < 0 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item := c.items[i]
	if err := stock.Check(item.Quantity, delta, item.Product.Stock); err != nil {
		return item, err
	}
	c.items[i].Quantity += delta
	return c.items[i], nil
}

// SetQuantity overwrites the quantity without consulting the guard. Used to
// roll back or to apply the server's answer.
func (c *Cart) SetQuantity(id uuid.UUID, quantity int) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = quantity
	return true
}

// Remove deletes the item and prunes it from the selection.
func (c *Cart) Remove(id uuid.UUID) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.selection.Prune()
	return true
}

// RemoveAll deletes every listed item that is present.
func (c *Cart) RemoveAll(ids []uuid.UUID) int {
	drop := NewItemSet(ids...)
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(item LineItem) bool { return drop.Has(item.ID) })
	c.selection.Prune()
	return before - len(c.items)
}

// Insert places item at position at, clamped to the list bounds.
func (c *Cart) Insert(at int, item LineItem) {
	if at < 0 {
		at = 0
	}
	if at > len(c.items) {
		at = len(c.items)
	}
	c.items = slices.Insert(c.items, at, item)
}

// Replace swaps the item list for a fresh copy from the server and prunes the selection.
func (c *Cart) Replace(items []LineItem) {
	c.items = slices.Clone(items)
	c.selection.Prune()
}

func (c *Cart) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(c.items, func(item LineItem) bool { return item.ID == id })
}
