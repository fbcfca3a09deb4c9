package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Product is a sellable listing. Stock is the authoritative available quantity.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SellerID  uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	Price     int64            `gorm:"column:price;not null"`
	Stock     int              `gorm:"column:stock;not null;default:0"`
	Images    types.StringList `gorm:"column:images;type:jsonb;not null"`
	Seller    *Seller          `gorm:"foreignKey:SellerID"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
