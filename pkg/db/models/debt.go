package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/enums"
)

// Debt is one charge a party owes. Payments are allocated oldest-first
// across a party's open debts.
type Debt struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PartyID      uuid.UUID        `gorm:"column:party_id;type:uuid;not null;index"`
	RegisteredAt time.Time        `gorm:"column:registered_at;not null"`
	Amount       decimal.Decimal  `gorm:"column:amount;type:numeric(10,2);not null"`
	Reason       *string          `gorm:"column:reason;type:text"`
	Status       enums.DebtStatus `gorm:"column:status;type:text;not null;default:'open'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Party    *Party        `gorm:"foreignKey:PartyID"`
	Payments []DebtPayment `gorm:"foreignKey:DebtID;constraint:OnDelete:CASCADE"`
}

func (d *Debt) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Paid sums the recorded payments against this debt.
func (d *Debt) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Outstanding is the unpaid remainder, floored at zero.
func (d *Debt) Outstanding() decimal.Decimal {
	out := d.Amount.Sub(d.Paid())
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
