package debts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/deletion"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// Service exposes debt registration and payment allocation.
type Service interface {
	RegisterDebt(ctx context.Context, input RegisterDebtInput) (*DebtDTO, error)
	GetDebt(ctx context.Context, id uuid.UUID) (*DebtDTO, error)
	ListDebts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error)
	DeleteDebt(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	RegisterPayment(ctx context.Context, input RegisterPaymentInput) (*PaymentResult, error)
}

// RegisterDebtInput holds the payload to register a debt.
type RegisterDebtInput struct {
	PartyID      uuid.UUID
	Amount       decimal.Decimal
	Reason       *string
	RegisteredAt *time.Time
}

// RegisterPaymentInput holds the payload for a payment against a party's
// ledger. The amount walks the open debts oldest first.
type RegisterPaymentInput struct {
	PartyID uuid.UUID
	Amount  decimal.Decimal
	OrderID *uuid.UUID
	Note    *string
	PaidAt  *time.Time
}

// DebtDTO is the API representation of a debt.
type DebtDTO struct {
	ID           uuid.UUID        `json:"id"`
	PartyID      uuid.UUID        `json:"party_id"`
	RegisteredAt time.Time        `json:"registered_at"`
	Amount       decimal.Decimal  `json:"amount"`
	Paid         decimal.Decimal  `json:"paid"`
	Outstanding  decimal.Decimal  `json:"outstanding"`
	Reason       *string          `json:"reason,omitempty"`
	Status       enums.DebtStatus `json:"status"`
	Payments     []PaymentDTO     `json:"payments,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// PaymentDTO is one recorded payment.
type PaymentDTO struct {
	ID      uuid.UUID       `json:"id"`
	DebtID  uuid.UUID       `json:"debt_id"`
	PaidAt  time.Time       `json:"paid_at"`
	Amount  decimal.Decimal `json:"amount"`
	OrderID *uuid.UUID      `json:"order_id,omitempty"`
	Note    *string         `json:"note,omitempty"`
}

// PaymentAllocation is the slice of a payment applied to one debt.
type PaymentAllocation struct {
	DebtID      uuid.UUID        `json:"debt_id"`
	Applied     decimal.Decimal  `json:"applied"`
	Outstanding decimal.Decimal  `json:"outstanding"`
	Status      enums.DebtStatus `json:"status"`
}

// PaymentResult reports how a payment was split. UnappliedAmount is the
// remainder once every open debt is settled; it is reported, never stored.
type PaymentResult struct {
	PartyID         uuid.UUID           `json:"party_id"`
	Amount          decimal.Decimal     `json:"amount"`
	AppliedAmount   decimal.Decimal     `json:"applied_amount"`
	UnappliedAmount decimal.Decimal     `json:"unapplied_amount"`
	Allocations     []PaymentAllocation `json:"allocations"`
}

// DeleteResult reports what the deletion policy decided.
type DeleteResult struct {
	Decision deletion.Decision `json:"decision"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a debt service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debt repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) RegisterDebt(ctx context.Context, input RegisterDebtInput) (*DebtDTO, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	registeredAt := time.Now().UTC()
	if input.RegisteredAt != nil {
		registeredAt = input.RegisteredAt.UTC()
	}

	debt := &models.Debt{
		PartyID:      input.PartyID,
		RegisteredAt: registeredAt,
		Amount:       input.Amount,
		Reason:       input.Reason,
		Status:       enums.DebtStatusOpen,
	}
	created, err := s.repo.Create(ctx, debt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register debt")
	}
	return toDTO(created), nil
}

func (s *service) GetDebt(ctx context.Context, id uuid.UUID) (*DebtDTO, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
	}
	return toDTO(debt), nil
}

func (s *service) ListDebts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list debts")
	}
	dtos := make([]*DebtDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDTO(&items[i]))
	}
	return pagination.NewPage(dtos, params, total), nil
}

func (s *service) DeleteDebt(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
	}

	payments, err := s.repo.CountPayments(ctx, debt.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payments")
	}

	decision := deletion.Decide(deletion.EntityDebt, payments)
	if decision != deletion.DecisionHardDelete {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "debt has recorded payments")
	}
	if err := s.repo.Delete(ctx, debt.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete debt")
	}
	return &DeleteResult{Decision: decision}, nil
}

// RegisterPayment walks the party's open debts oldest first, settling each in
// full before moving on. The whole allocation runs in one transaction with
// the debts locked, so two concurrent payments cannot split the same debt.
func (s *service) RegisterPayment(ctx context.Context, input RegisterPaymentInput) (*PaymentResult, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	paidAt := time.Now().UTC()
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}

	result := &PaymentResult{
		PartyID: input.PartyID,
		Amount:  input.Amount,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debts, err := repo.OpenDebtsForUpdate(ctx, input.PartyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open debts")
		}
		if len(debts) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "party has no open debts")
		}

		remaining := input.Amount
		for i := range debts {
			if !remaining.IsPositive() {
				break
			}
			debt := &debts[i]
			outstanding := debt.Outstanding()
			if !outstanding.IsPositive() {
				continue
			}

			applied := decimal.Min(remaining, outstanding)
			payment := &models.DebtPayment{
				DebtID:  debt.ID,
				PaidAt:  paidAt,
				Amount:  applied,
				OrderID: input.OrderID,
				Note:    input.Note,
			}
			if err := repo.CreatePayment(ctx, payment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
			}

			newOutstanding := outstanding.Sub(applied)
			if newOutstanding.IsZero() {
				debt.Status = enums.DebtStatusSettled
			} else {
				debt.Status = enums.DebtStatusPartiallyPaid
			}
			if err := repo.Update(ctx, debt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update debt status")
			}

			remaining = remaining.Sub(applied)
			result.Allocations = append(result.Allocations, PaymentAllocation{
				DebtID:      debt.ID,
				Applied:     applied,
				Outstanding: newOutstanding,
				Status:      debt.Status,
			})
		}

		result.AppliedAmount = input.Amount.Sub(remaining)
		result.UnappliedAmount = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func toDTO(debt *models.Debt) *DebtDTO {
	if debt == nil {
		return nil
	}
	dto := &DebtDTO{
		ID:           debt.ID,
		PartyID:      debt.PartyID,
		RegisteredAt: debt.RegisteredAt,
		Amount:       debt.Amount,
		Paid:         debt.Paid(),
		Outstanding:  debt.Outstanding(),
		Reason:       debt.Reason,
		Status:       debt.Status,
		CreatedAt:    debt.CreatedAt,
	}
	for i := range debt.Payments {
		p := debt.Payments[i]
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:      p.ID,
			DebtID:  p.DebtID,
			PaidAt:  p.PaidAt,
			Amount:  p.Amount,
			OrderID: p.OrderID,
			Note:    p.Note,
		})
	}
	return dto
}
