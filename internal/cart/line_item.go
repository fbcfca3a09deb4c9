package cart

import (
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductSnapshot is the product data carried on a cart line.
type ProductSnapshot struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  int64     `json:"price"`
	Stock  int       `json:"stock"`
	Images []string  `json:"images"`
}

// SellerRef identifies the seller that owns a product.
type SellerRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LineItem is one product entry in a buyer's cart.
type LineItem struct {
	ID       uuid.UUID       `json:"id"`
	Quantity int             `json:"quantity"`
	Product  ProductSnapshot `json:"product"`
	Seller   SellerRef       `json:"seller"`
}

// LineTotal is price times quantity.
func (l LineItem) LineTotal() int64 {
	return money.LineTotal(l.Product.Price, l.Quantity)
}

// Group is the per-seller projection of a cart. It is derived, never persisted.
type Group struct {
	Seller SellerRef  `json:"seller"`
	Items  []LineItem `json:"items"`
}

// Subtotal sums the line totals of every item in the group.
func (g Group) Subtotal() int64 {
	var total int64
	for _, item := range g.Items {
		total += item.LineTotal()
	}
	return total
}

// GroupBySeller partitions items by seller. Groups appear in the order their
// seller first appears in items; items keep their relative order. Empty groups
// cannot occur.
func GroupBySeller(items []LineItem) []Group {
	groups := make([]Group, 0)
	index := make(map[uuid.UUID]int)
	for _, item := range items {
		pos, ok := index[item.Seller.ID]
		if !ok {
			pos = len(groups)
			index[item.Seller.ID] = pos
			groups = append(groups, Group{Seller: item.Seller})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}

// Flatten is the inverse of GroupBySeller.
func Flatten(groups []Group) []LineItem {
	items := make([]LineItem, 0)
	for _, g := range groups {
		items = append(items, g.Items...)
	}
	return items
}

// ItemSet is a set of line-item ids.
type ItemSet map[uuid.UUID]struct{}

// NewItemSet builds a set from ids.
func NewItemSet(ids ...uuid.UUID) ItemSet {
	set := make(ItemSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s ItemSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}
