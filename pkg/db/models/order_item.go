package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem records one product line of a consignment round. UnitPrice is
// snapshotted at checkout and never follows later catalog changes.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	QuantityOut  decimal.Decimal `gorm:"column:quantity_out;type:numeric(10,3);not null"`
	QuantityBack decimal.Decimal `gorm:"column:quantity_back;type:numeric(10,3);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// QuantitySold is the settled quantity, floored at zero so an over-return
// never produces a negative line.
func (i *OrderItem) QuantitySold() decimal.Decimal {
	sold := i.QuantityOut.Sub(i.QuantityBack)
	if sold.IsNegative() {
		return decimal.Zero
	}
	return sold
}

// LineTotal is the settled quantity priced at the checkout snapshot.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.QuantitySold().Mul(i.UnitPrice).Round(2)
}
