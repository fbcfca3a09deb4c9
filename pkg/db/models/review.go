package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is the buyer's rating of a delivered order detail. One per detail.
type Review struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderDetailID uuid.UUID `gorm:"column:order_detail_id;type:uuid;not null;uniqueIndex:ux_reviews_order_detail"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	BuyerID       uuid.UUID `gorm:"column:buyer_id;type:uuid;not null"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Rating        int       `gorm:"column:rating;not null"`
	Comment       string    `gorm:"column:comment"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
