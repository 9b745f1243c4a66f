package billingrules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

var oneHundred = decimal.NewFromInt(100)

// Service exposes discount rule management and lookup.
type Service interface {
	CreateRule(ctx context.Context, input RuleInput) (*RuleDTO, error)
	GetRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error)
	ListRules(ctx context.Context, activeOnly bool, params pagination.Params) (*pagination.PageResult, error)
	UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*RuleDTO, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ApplyDiscount(ctx context.Context, amount decimal.Decimal) (*DiscountResult, error)
}

// RuleInput holds the payload to create a rule.
type RuleInput struct {
	RangeStart  decimal.Decimal
	RangeEnd    decimal.Decimal
	Percentage  decimal.Decimal
	Description *string
}

// UpdateRuleInput holds optional mutation values for a rule.
type UpdateRuleInput struct {
	RangeStart  *decimal.Decimal
	RangeEnd    *decimal.Decimal
	Percentage  *decimal.Decimal
	Description *string
	IsActive    *bool
}

// RuleDTO is the API representation of a discount rule.
type RuleDTO struct {
	ID          uuid.UUID       `json:"id"`
	RangeStart  decimal.Decimal `json:"range_start"`
	RangeEnd    decimal.Decimal `json:"range_end"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DiscountResult reports the outcome of a discount lookup. When no rule
// matches, RuleID is nil and the full amount stays due.
type DiscountResult struct {
	RuleID         *uuid.UUID      `json:"rule_id,omitempty"`
	Percentage     decimal.Decimal `json:"percentage"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

type service struct {
	repo *Repository
}

// NewService constructs a billing rule service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing rule repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateRule(ctx context.Context, input RuleInput) (*RuleDTO, error) {
	if err := validateRange(input.RangeStart, input.RangeEnd, input.Percentage); err != nil {
		return nil, err
	}
	overlap, err := s.repo.HasOverlap(ctx, input.RangeStart, input.RangeEnd, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check overlap")
	}
	if overlap {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "range overlaps an active rule")
	}

	rule := &models.BillingRule{
		RangeStart:  input.RangeStart,
		RangeEnd:    input.RangeEnd,
		Percentage:  input.Percentage,
		Description: input.Description,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rule")
	}
	return toDTO(created), nil
}

func (s *service) GetRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rule")
	}
	return toDTO(rule), nil
}

func (s *service) ListRules(ctx context.Context, activeOnly bool, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, activeOnly, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rules")
	}
	dtos := make([]*RuleDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDTO(&items[i]))
	}
	return pagination.NewPage(dtos, params, total), nil
}

func (s *service) UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*RuleDTO, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rule")
	}

	if input.RangeStart != nil {
		rule.RangeStart = *input.RangeStart
	}
	if input.RangeEnd != nil {
		rule.RangeEnd = *input.RangeEnd
	}
	if input.Percentage != nil {
		rule.Percentage = *input.Percentage
	}
	if input.Description != nil {
		rule.Description = input.Description
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	if err := validateRange(rule.RangeStart, rule.RangeEnd, rule.Percentage); err != nil {
		return nil, err
	}
	if rule.IsActive {
		overlap, err := s.repo.HasOverlap(ctx, rule.RangeStart, rule.RangeEnd, &rule.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check overlap")
		}
		if overlap {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "range overlaps an active rule")
		}
	}

	updated, err := s.repo.Update(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rule")
	}
	return toDTO(updated), nil
}

func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete rule")
	}
	return nil
}

// ApplyDiscount resolves the active rule covering amount. A gap in the rule
// table is not an error: the caller owes the full amount.
func (s *service) ApplyDiscount(ctx context.Context, amount decimal.Decimal) (*DiscountResult, error) {
	result := &DiscountResult{
		Percentage:     decimal.Zero,
		OriginalAmount: amount,
		DiscountAmount: decimal.Zero,
		FinalAmount:    amount,
	}
	if !amount.IsPositive() {
		return result, nil
	}

	rule, err := s.repo.FindActiveForAmount(ctx, amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup rule")
	}
	if rule == nil {
		return result, nil
	}

	discount := amount.Mul(rule.Percentage).Div(oneHundred).Round(2)
	result.RuleID = &rule.ID
	result.Percentage = rule.Percentage
	result.DiscountAmount = discount
	result.FinalAmount = amount.Sub(discount)
	return result, nil
}

func validateRange(start, end, percentage decimal.Decimal) error {
	if start.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "range_start cannot be negative")
	}
	if !start.LessThan(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "range_start must be below range_end")
	}
	if percentage.IsNegative() || percentage.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage must be between 0 and 100")
	}
	return nil
}

func toDTO(rule *models.BillingRule) *RuleDTO {
	if rule == nil {
		return nil
	}
	return &RuleDTO{
		ID:          rule.ID,
		RangeStart:  rule.RangeStart,
		RangeEnd:    rule.RangeEnd,
		Percentage:  rule.Percentage,
		Description: rule.Description,
		IsActive:    rule.IsActive,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}
