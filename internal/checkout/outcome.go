package checkout

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// OrderResult is the server's answer for one create request.
type OrderResult struct {
	SellerID   uuid.UUID         `json:"sellerId"`
	OrderID    *uuid.UUID        `json:"orderId,omitempty"`
	Status     enums.OrderStatus `json:"status,omitempty"`
	TotalPrice int64             `json:"totalPrice,omitempty"`
	Error      *types.APIError   `json:"error,omitempty"`
}

// CreateOrdersResponse reports each create request independently.
type CreateOrdersResponse struct {
	Created []OrderResult `json:"created"`
	Failed  []OrderResult `json:"failed"`
}

// BucketOutcome ties a bucket to what happened to its order request.
type BucketOutcome struct {
	Bucket  Bucket
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Err     error
}

// Outcome splits a submitted plan into the buckets that became orders and the
// ones that did not. Nothing is compensated: created orders stand.
type Outcome struct {
	Succeeded []BucketOutcome
	Failed    []BucketOutcome
}

// NewOutcome matches the server response to the plan by seller. A bucket the
// server did not mention counts as failed.
func NewOutcome(plan Plan, resp CreateOrdersResponse) Outcome {
	created := make(map[uuid.UUID]OrderResult, len(resp.Created))
	for _, r := range resp.Created {
		created[r.SellerID] = r
	}
	failed := make(map[uuid.UUID]OrderResult, len(resp.Failed))
	for _, r := range resp.Failed {
		failed[r.SellerID] = r
	}

	var out Outcome
	for _, b := range plan.Buckets {
		if r, ok := created[b.Seller.ID]; ok && r.OrderID != nil {
			out.Succeeded = append(out.Succeeded, BucketOutcome{Bucket: b, OrderID: *r.OrderID, Status: r.Status})
			continue
		}
		var err error
		if r, ok := failed[b.Seller.ID]; ok && r.Error != nil {
			err = pkgerrors.FromAPI(*r.Error)
		} else {
			err = pkgerrors.New(pkgerrors.CodeInternal, "order was not created")
		}
		out.Failed = append(out.Failed, BucketOutcome{Bucket: b, Err: err})
	}
	return out
}

// FailAll marks every bucket failed with err, used when the submission never reached the server.
func FailAll(plan Plan, err error) Outcome {
	var out Outcome
	for _, b := range plan.Buckets {
		out.Failed = append(out.Failed, BucketOutcome{Bucket: b, Err: err})
	}
	return out
}

// IsPartial reports whether some but not all buckets became orders.
func (o Outcome) IsPartial() bool {
	return len(o.Succeeded) > 0 && len(o.Failed) > 0
}

// OK reports whether every bucket became an order.
func (o Outcome) OK() bool {
	return len(o.Failed) == 0
}

// Err combines the per-bucket failures, or nil.
func (o Outcome) Err() error {
	var err error
	for _, f := range o.Failed {
		err = multierr.Append(err, fmt.Errorf("seller %s: %w", f.Bucket.Seller.ID, f.Err))
	}
	return err
}

// SucceededItemIDs are the cart lines consumed by created orders.
func (o Outcome) SucceededItemIDs() []uuid.UUID {
	return itemIDs(o.Succeeded)
}

// FailedItemIDs are the cart lines that stay in the cart, still selected.
func (o Outcome) FailedItemIDs() []uuid.UUID {
	return itemIDs(o.Failed)
}

// OrderIDs lists the created orders in bucket order.
func (o Outcome) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Succeeded))
	for _, s := range o.Succeeded {
		ids = append(ids, s.OrderID)
	}
	return ids
}

func itemIDs(results []BucketOutcome) []uuid.UUID {
	var ids []uuid.UUID
	for _, r := range results {
		ids = append(ids, r.Bucket.ItemIDs()...)
	}
	return ids
}
