package parties

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/deletion"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
	"github.com/licimar/licimar-backend/pkg/validation"
)

// Service exposes party management operations.
type Service interface {
	CreateParty(ctx context.Context, input CreatePartyInput) (*PartyDTO, error)
	GetParty(ctx context.Context, id uuid.UUID) (*PartyDTO, error)
	ListParties(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error)
	UpdateParty(ctx context.Context, id uuid.UUID, input UpdatePartyInput) (*PartyDTO, error)
	DeleteParty(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
}

// CreatePartyInput holds the validated payload to create a party.
type CreatePartyInput struct {
	Name    string
	Email   *string
	CPF     *string
	Phone   *string
	Address *string
}

// UpdatePartyInput holds optional mutation values for a party.
type UpdatePartyInput struct {
	Name    *string
	Email   *string
	CPF     *string
	Phone   *string
	Address *string
	Status  *enums.PartyStatus
}

// DeleteResult reports what the deletion policy decided.
type DeleteResult struct {
	Decision deletion.Decision `json:"decision"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a party service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("party repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateParty(ctx context.Context, input CreatePartyInput) (*PartyDTO, error) {
	party := &models.Party{
		Name:    strings.TrimSpace(input.Name),
		Address: input.Address,
		Status:  enums.PartyStatusActive,
	}
	if party.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := applyContactFields(party, input.Email, input.CPF, input.Phone); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, party)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or cpf already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create party")
	}
	return toDTO(created), nil
}

func (s *service) GetParty(ctx context.Context, id uuid.UUID) (*PartyDTO, error) {
	party, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}

	dto := toDTO(party)
	outstanding, err := s.repo.OutstandingDebt(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute outstanding debt")
	}
	dto.OutstandingDebt = &outstanding
	return dto, nil
}

func (s *service) ListParties(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parties")
	}
	dtos := make([]*PartyDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDTO(&items[i]))
	}
	return pagination.NewPage(dtos, params, total), nil
}

func (s *service) UpdateParty(ctx context.Context, id uuid.UUID, input UpdatePartyInput) (*PartyDTO, error) {
	party, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		party.Name = name
	}
	if err := applyContactFields(party, input.Email, input.CPF, input.Phone); err != nil {
		return nil, err
	}
	if input.Address != nil {
		party.Address = input.Address
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		party.Status = *input.Status
	}

	updated, err := s.repo.Update(ctx, party)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or cpf already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update party")
	}
	return toDTO(updated), nil
}

func (s *service) DeleteParty(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	party, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}

	dependents, err := s.repo.CountDependents(ctx, party.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count dependents")
	}

	decision := deletion.Decide(deletion.EntityParty, dependents)
	switch decision {
	case deletion.DecisionHardDelete:
		if err := s.repo.Delete(ctx, party.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete party")
		}
	case deletion.DecisionDeactivate:
		party.Status = enums.PartyStatusInactive
		if _, err := s.repo.Update(ctx, party); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate party")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "party cannot be deleted")
	}
	return &DeleteResult{Decision: decision}, nil
}

func applyContactFields(party *models.Party, email, cpf, phone *string) error {
	if email != nil {
		value := strings.ToLower(strings.TrimSpace(*email))
		if value == "" {
			party.Email = nil
		} else {
			if !validation.ValidEmail(value) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
			}
			party.Email = &value
		}
	}
	if cpf != nil {
		value := validation.NormalizeCPF(*cpf)
		if value == "" {
			party.CPF = nil
		} else {
			if !validation.ValidCPF(value) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid cpf")
			}
			party.CPF = &value
		}
	}
	if phone != nil {
		value := validation.NormalizePhone(*phone)
		if value == "" {
			party.Phone = nil
		} else {
			if !validation.ValidPhone(value) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid phone")
			}
			party.Phone = &value
		}
	}
	return nil
}
