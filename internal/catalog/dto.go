package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
)

// ProductDTO is the API representation of a catalog product.
type ProductDTO struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	Stock        decimal.Decimal  `json:"stock"`
	MinStock     decimal.Decimal  `json:"min_stock"`
	LowStock     bool             `json:"low_stock"`
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	CategoryName *string          `json:"category_name,omitempty"`
	NoReturn     bool             `json:"no_return"`
	UnitKind     enums.UnitKind   `json:"unit_kind"`
	WeightKg     *decimal.Decimal `json:"weight_kg,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CategoryDTO is the API representation of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		MinStock:    product.MinStock,
		LowStock:    product.LowStock(),
		CategoryID:  product.CategoryID,
		NoReturn:    product.NoReturn,
		UnitKind:    product.UnitKind,
		WeightKg:    product.WeightKg,
		ImageURL:    product.ImageURL,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = &product.Category.Name
	}
	return dto
}

func toCategoryDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
