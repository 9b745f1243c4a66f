package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/enums"
)

// ConsignmentOrder captures an ad-hoc negotiated movement of goods outside
// the regular checkout/settlement cycle: a withdrawal, a devolution, or a
// standalone settlement at negotiated prices.
type ConsignmentOrder struct {
	ID        uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	PartyID   uuid.UUID                  `gorm:"column:party_id;type:uuid;not null;index"`
	Operation enums.ConsignmentOperation `gorm:"column:operation;type:text;not null"`
	Status    enums.ConsignmentStatus    `gorm:"column:status;type:text;not null;default:'open'"`
	Total     decimal.Decimal            `gorm:"column:total;type:numeric(10,2);not null;default:0"`
	Notes     *string                    `gorm:"column:notes;type:text"`
	CreatedAt time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                  `gorm:"column:updated_at;autoUpdateTime"`

	Party *Party            `gorm:"foreignKey:PartyID"`
	Items []ConsignmentItem `gorm:"foreignKey:ConsignmentOrderID;constraint:OnDelete:CASCADE"`
}

func (c *ConsignmentOrder) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
