package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsignmentItem is one negotiated line of a consignment order. UnitPrice
// may differ from the catalog price.
type ConsignmentItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ConsignmentOrderID uuid.UUID       `gorm:"column:consignment_order_id;type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity           decimal.Decimal `gorm:"column:quantity;type:numeric(10,3);not null"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Subtotal           decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (i *ConsignmentItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
