package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderDetail is one line of an order with a price snapshot taken at creation.
type OrderDetail struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName string    `gorm:"column:product_name;not null"`
	UnitPrice   int64     `gorm:"column:unit_price;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Review      *Review   `gorm:"foreignKey:OrderDetailID"`
}

func (d *OrderDetail) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

func (d OrderDetail) LineTotal() int64 {
	return d.UnitPrice * int64(d.Quantity)
}
