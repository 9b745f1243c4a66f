package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingRule defines a discount tier applied when an order total falls
// inside [RangeStart, RangeEnd]. Active ranges never overlap.
type BillingRule struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RangeStart  decimal.Decimal `gorm:"column:range_start;type:numeric(10,2);not null"`
	RangeEnd    decimal.Decimal `gorm:"column:range_end;type:numeric(10,2);not null"`
	Percentage  decimal.Decimal `gorm:"column:percentage;type:numeric(5,2);not null"`
	Description *string         `gorm:"column:description;type:text"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BillingRule) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Contains reports whether total falls inside the rule's inclusive range.
func (b *BillingRule) Contains(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(b.RangeStart) && total.LessThanOrEqual(b.RangeEnd)
}
