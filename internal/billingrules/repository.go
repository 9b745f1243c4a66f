package billingrules

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// Repository persists discount rules.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new rule.
func (r *Repository) Create(ctx context.Context, rule *models.BillingRule) (*models.BillingRule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// FindByID loads a rule.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BillingRule, error) {
	var rule models.BillingRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// Update persists the mutated rule.
func (r *Repository) Update(ctx context.Context, rule *models.BillingRule) (*models.BillingRule, error) {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BillingRule{}, "id = ?", id).Error
}

// List returns a page of rules ordered by range start.
func (r *Repository) List(ctx context.Context, activeOnly bool, params pagination.Params) ([]models.BillingRule, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.BillingRule{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.BillingRule
	err := q.Order("range_start ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindActiveForAmount returns the active rule whose range contains amount,
// or nil when no rule matches.
func (r *Repository) FindActiveForAmount(ctx context.Context, amount decimal.Decimal) (*models.BillingRule, error) {
	var rule models.BillingRule
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND range_start <= ? AND range_end >= ?", true, amount, amount).
		Order("range_start ASC").
		First(&rule).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// HasOverlap reports whether any active rule other than excludeID overlaps
// the [start, end] range.
func (r *Repository) HasOverlap(ctx context.Context, start, end decimal.Decimal, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.BillingRule{}).
		Where("is_active = ? AND range_start <= ? AND range_end >= ?", true, end, start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
