package consignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// ListFilter narrows the consignment listing.
type ListFilter struct {
	PartyID   *uuid.UUID
	Operation enums.ConsignmentOperation
	Status    enums.ConsignmentStatus
}

// Repository persists consignment orders and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the consignment with its items.
func (r *Repository) Create(ctx context.Context, order *models.ConsignmentOrder) (*models.ConsignmentOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads the consignment with items and party.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ConsignmentOrder, error) {
	var order models.ConsignmentOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Party").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the bare consignment under a row lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ConsignmentOrder, error) {
	var order models.ConsignmentOrder
	err := db.LockForUpdate(r.db.WithContext(ctx)).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Update persists the mutated consignment.
func (r *Repository) Update(ctx context.Context, order *models.ConsignmentOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Party").Save(order).Error
}

// List returns a filtered page of consignments, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.ConsignmentOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ConsignmentOrder{})
	if filter.PartyID != nil {
		q = q.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Operation != "" {
		q = q.Where("operation = ?", filter.Operation)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.ConsignmentOrder
	err := q.Preload("Items").
		Preload("Party").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
