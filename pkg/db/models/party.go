package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/enums"
)

// Party represents an ambulant vendor account that takes goods on
// consignment. The AccumulatedDebt column is a legacy running balance kept
// for reporting; the Debt ledger is the source of truth.
type Party struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name            string            `gorm:"column:name;type:text;not null"`
	Email           *string           `gorm:"column:email;type:text;uniqueIndex"`
	CPF             *string           `gorm:"column:cpf;type:text;uniqueIndex"`
	Phone           *string           `gorm:"column:phone;type:text"`
	Address         *string           `gorm:"column:address;type:text"`
	Status          enums.PartyStatus `gorm:"column:status;type:text;not null;default:'active'"`
	AccumulatedDebt decimal.Decimal   `gorm:"column:accumulated_debt;type:numeric(10,2);not null;default:0"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Orders            []Order            `gorm:"foreignKey:PartyID"`
	Debts             []Debt             `gorm:"foreignKey:PartyID"`
	ConsignmentOrders []ConsignmentOrder `gorm:"foreignKey:PartyID"`
}

func (p *Party) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
