package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only trail entry. Rows are removed only by the
// retention cleanup job.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Action    string     `gorm:"column:action;type:text;not null;index"`
	Details   *string    `gorm:"column:details;type:text"`
	IP        *string    `gorm:"column:ip;type:text"`
	UserAgent *string    `gorm:"column:user_agent;type:text"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`

	User *User `gorm:"foreignKey:UserID"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
