package payloads

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderCreatedEvent is emitted once per seller order created from a checkout.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	CheckoutID    uuid.UUID           `json:"checkout_id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalPrice    int64               `json:"total_price"`
	ShippingFee   int64               `json:"shipping_fee"`
	ItemCount     int                 `json:"item_count"`
}

// OrderStatusChangedEvent is emitted for every accepted lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	Action        enums.OrderAction   `json:"action"`
	From          enums.OrderStatus   `json:"from"`
	To            enums.OrderStatus   `json:"to"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Reason        string              `json:"reason,omitempty"`
	Evidence      []string            `json:"evidence,omitempty"`
	ChangedAt     time.Time           `json:"changed_at"`
}

// OrderReviewCreatedEvent is emitted when a buyer reviews a delivered line.
type OrderReviewCreatedEvent struct {
	ReviewID      uuid.UUID `json:"review_id"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderDetailID uuid.UUID `json:"order_detail_id"`
	ProductID     uuid.UUID `json:"product_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	Rating        int       `json:"rating"`
}

// CheckoutConvertedEvent summarizes one checkout submission across sellers.
type CheckoutConvertedEvent struct {
	CheckoutID    uuid.UUID   `json:"checkout_id"`
	BuyerID       uuid.UUID   `json:"buyer_id"`
	OrderIDs      []uuid.UUID `json:"order_ids"`
	FailedSellers []uuid.UUID `json:"failed_sellers,omitempty"`
	GrandTotal    int64       `json:"grand_total"`
	ConvertedAt   time.Time   `json:"converted_at"`
}
