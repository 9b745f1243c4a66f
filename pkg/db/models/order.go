package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/enums"
)

// Order is a consignment round: goods checked out to a party, later settled
// against what came back. Total is derived from the items plus DebtCharge.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	PartyID    uuid.UUID         `gorm:"column:party_id;type:uuid;not null;index"`
	OccurredAt time.Time         `gorm:"column:occurred_at;not null"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'checked_out'"`
	Total      decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null;default:0"`
	DebtCharge decimal.Decimal   `gorm:"column:debt_charge;type:numeric(10,2);not null;default:0"`
	Notes      *string           `gorm:"column:notes;type:text"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Party *Party      `gorm:"foreignKey:PartyID"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
