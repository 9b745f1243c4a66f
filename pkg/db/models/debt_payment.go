package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtPayment records money applied against a single debt. OrderID links
// payments collected while finalizing a settlement round.
type DebtPayment struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	DebtID    uuid.UUID       `gorm:"column:debt_id;type:uuid;not null;index"`
	PaidAt    time.Time       `gorm:"column:paid_at;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	OrderID   *uuid.UUID      `gorm:"column:order_id;type:uuid"`
	Note      *string         `gorm:"column:note;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *DebtPayment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
