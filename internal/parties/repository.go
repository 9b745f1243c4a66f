package parties

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// ListFilter narrows the party listing.
type ListFilter struct {
	Status enums.PartyStatus
	Search string
}

// Repository persists parties.
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

// Create inserts a new party.
func (r *Repository) Create(ctx context.Context, party *models.Party) (*models.Party, error) {
	if err := r.db.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

// FindByID loads a party without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	if err := r.db.WithContext(ctx).First(&party, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

// Update persists the mutated party record.
func (r *Repository) Update(ctx context.Context, party *models.Party) (*models.Party, error) {
	if err := r.db.WithContext(ctx).Save(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

// Delete removes a party row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Party{}, "id = ?", id).Error
}

// List returns a filtered page of parties ordered by name.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Party, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Party{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Party
	err := q.Order("name ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountDependents reports how many orders, debts, and consignments reference
// the party.
func (r *Repository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	for _, model := range []any{&models.Order{}, &models.Debt{}, &models.ConsignmentOrder{}} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Where("party_id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// OutstandingDebt sums the unpaid remainder across the party's open and
// partially paid debts, floored at zero.
func (r *Repository) OutstandingDebt(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var debts []models.Debt
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("party_id = ? AND status IN ?", id, []enums.DebtStatus{enums.DebtStatusOpen, enums.DebtStatusPartiallyPaid}).
		Find(&debts).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range debts {
		total = total.Add(debts[i].Outstanding())
	}
	if total.IsNegative() {
		return decimal.Zero, nil
	}
	return total, nil
}
