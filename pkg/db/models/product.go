package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/enums"
)

// Product is a catalog item handed out on consignment. NoReturn marks goods
// that cannot come back once taken (ice, perishables); UnitKind controls
// whether quantities must be whole numbers.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;type:text;not null"`
	Description *string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Stock       decimal.Decimal  `gorm:"column:stock;type:numeric(10,3);not null;default:0"`
	MinStock    decimal.Decimal  `gorm:"column:min_stock;type:numeric(10,3);not null;default:0"`
	CategoryID  *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	NoReturn    bool             `gorm:"column:no_return;not null;default:false"`
	UnitKind    enums.UnitKind   `gorm:"column:unit_kind;type:text;not null;default:'discrete'"`
	WeightKg    *decimal.Decimal `gorm:"column:weight_kg;type:numeric(10,3)"`
	ImageURL    *string          `gorm:"column:image_url;type:text"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// LowStock reports whether the product is at or below its restock threshold.
func (p *Product) LowStock() bool {
	return p.Stock.LessThanOrEqual(p.MinStock)
}
