package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order is the per-seller order produced from one checkout bucket.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID        uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;index"`
	PreCancelStatus *enums.OrderStatus  `gorm:"column:pre_cancel_status;type:text"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;not null"`
	ShippingFee     int64               `gorm:"column:shipping_fee;not null"`
	TotalPrice      int64               `gorm:"column:total_price;not null"`
	Note            *string             `gorm:"column:note"`
	CancelReason    *string             `gorm:"column:cancel_reason"`
	RejectReason    *string             `gorm:"column:reject_reason"`
	RefundReason    *string             `gorm:"column:refund_reason"`
	RefundEvidence  types.StringList    `gorm:"column:refund_evidence;type:jsonb;not null"`
	StatusChangedAt time.Time           `gorm:"column:status_changed_at;not null"`
	CompletedAt     *time.Time          `gorm:"column:completed_at"`
	Details         []OrderDetail       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Seller          *Seller             `gorm:"foreignKey:SellerID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.StatusChangedAt.IsZero() {
		o.StatusChangedAt = time.Now().UTC()
	}
	return nil
}

// Subtotal is the sum of the detail lines, excluding shipping.
func (o Order) Subtotal() int64 {
	var subtotal int64
	for _, d := range o.Details {
		subtotal += d.LineTotal()
	}
	return subtotal
}
