package debts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// ListFilter narrows the debt listing.
type ListFilter struct {
	PartyID *uuid.UUID
	Status  enums.DebtStatus
}

// Repository persists debts and their payments.
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

// Create inserts a new debt.
func (r *Repository) Create(ctx context.Context, debt *models.Debt) (*models.Debt, error) {
	if err := r.db.WithContext(ctx).Create(debt).Error; err != nil {
		return nil, err
	}
	return debt, nil
}

// FindByID loads the debt with its payments.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	var debt models.Debt
	err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&debt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

// Update persists the mutated debt.
func (r *Repository) Update(ctx context.Context, debt *models.Debt) error {
	return r.db.WithContext(ctx).Omit("Payments", "Party").Save(debt).Error
}

// Delete removes a debt row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Debt{}, "id = ?", id).Error
}

// List returns a filtered page of debts, oldest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Debt, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Debt{})
	if filter.PartyID != nil {
		q = q.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Debt
	err := q.Preload("Payments").
		Order("registered_at ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// OpenDebtsForUpdate loads the party's open and partially paid debts oldest
// first, under row locks, with payments preloaded.
func (r *Repository) OpenDebtsForUpdate(ctx context.Context, partyID uuid.UUID) ([]models.Debt, error) {
	var ids []uuid.UUID
	err := db.LockForUpdate(r.db.WithContext(ctx).Model(&models.Debt{})).
		Where("party_id = ? AND status IN ?", partyID, []enums.DebtStatus{enums.DebtStatusOpen, enums.DebtStatusPartiallyPaid}).
		Order("registered_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var debts []models.Debt
	err = r.db.WithContext(ctx).
		Preload("Payments").
		Where("id IN ?", ids).
		Order("registered_at ASC").
		Find(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// CreatePayment inserts a payment row.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.DebtPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CountPayments reports how many payments a debt has received.
func (r *Repository) CountPayments(ctx context.Context, debtID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DebtPayment{}).
		Where("debt_id = ?", debtID).
		Count(&count).Error
	return count, err
}
