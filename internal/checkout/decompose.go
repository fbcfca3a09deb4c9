// Package checkout turns a cart selection into per-seller order requests.
package checkout

import (
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// DefaultShippingFee is the flat per-seller shipping charge in minor units.
const DefaultShippingFee int64 = 30000

// Bucket is the slice of a checkout that becomes one seller's order.
type Bucket struct {
	Seller      cart.SellerRef  `json:"seller"`
	Items       []cart.LineItem `json:"items"`
	Subtotal    int64           `json:"subtotal"`
	ShippingFee int64           `json:"shippingFee"`
	Total       int64           `json:"total"`
}

// Plan is the decomposed checkout shown to the buyer before confirmation.
type Plan struct {
	Buckets    []Bucket `json:"buckets"`
	GrandTotal int64    `json:"grandTotal"`
}

// Decompose keeps the selected items of each group, drops groups left empty and
// prices every remaining group as an independent bucket. Bucket order follows
// group order.
func Decompose(groups []cart.Group, selected cart.ItemSet, shippingFee int64) Plan {
	plan := Plan{Buckets: make([]Bucket, 0, len(groups))}
	for _, group := range groups {
		var items []cart.LineItem
		for _, item := range group.Items {
			if selected.Has(item.ID) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		bucket := newBucket(group.Seller, items, shippingFee)
		plan.Buckets = append(plan.Buckets, bucket)
		plan.GrandTotal = money.Sum(plan.GrandTotal, bucket.Total)
	}
	return plan
}

func newBucket(seller cart.SellerRef, items []cart.LineItem, shippingFee int64) Bucket {
	lines := make([]int64, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineTotal())
	}
	subtotal := money.Sum(lines...)
	return Bucket{
		Seller:      seller,
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Total:       money.Sum(subtotal, shippingFee),
	}
}

// IsEmpty reports whether nothing was selected.
func (p Plan) IsEmpty() bool {
	return len(p.Buckets) == 0
}

// ItemIDs lists every line item the plan consumes.
func (p Plan) ItemIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, b := range p.Buckets {
		ids = append(ids, b.ItemIDs()...)
	}
	return ids
}

// Bucket returns the bucket of sellerID.
func (p Plan) Bucket(sellerID uuid.UUID) (Bucket, bool) {
	for _, b := range p.Buckets {
		if b.Seller.ID == sellerID {
			return b, true
		}
	}
	return Bucket{}, false
}

// ItemIDs lists the line items of the bucket.
func (b Bucket) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
