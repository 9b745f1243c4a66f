package consignments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// Service exposes negotiated consignment movements.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ConsignmentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error)
	Close(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error)
}

// CreateInput holds the payload to open a consignment.
type CreateInput struct {
	PartyID   uuid.UUID
	Operation enums.ConsignmentOperation
	Notes     *string
	Lines     []Line
}

// Line is one negotiated product movement.
type Line struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ConsignmentDTO is the API representation of a consignment order.
type ConsignmentDTO struct {
	ID        uuid.UUID                  `json:"id"`
	PartyID   uuid.UUID                  `json:"party_id"`
	PartyName string                     `json:"party_name,omitempty"`
	Operation enums.ConsignmentOperation `json:"operation"`
	Status    enums.ConsignmentStatus    `json:"status"`
	Total     decimal.Decimal            `json:"total"`
	Notes     *string                    `json:"notes,omitempty"`
	Items     []ItemDTO                  `json:"items"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// ItemDTO is one line of a consignment.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type partyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	parties  partyLoader
	catalog  productLoader
}

// NewService constructs a consignment service instance.
func NewService(repo *Repository, dbClient *db.Client, parties partyLoader, catalog productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consignment repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if parties == nil {
		return nil, fmt.Errorf("party repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, dbClient: dbClient, parties: parties, catalog: catalog}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ConsignmentDTO, error) {
	if !input.Operation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	party, err := s.parties.FindByID(ctx, input.PartyID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	if party.Status != enums.PartyStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "party is inactive")
	}

	order := &models.ConsignmentOrder{
		PartyID:   party.ID,
		Operation: input.Operation,
		Status:    enums.ConsignmentStatusOpen,
		Notes:     input.Notes,
	}

	total := decimal.Zero
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
		}
		if _, err := s.catalog.FindProductByID(ctx, line.ProductID); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		subtotal := line.Quantity.Mul(line.UnitPrice).Round(2)
		total = total.Add(subtotal)
		order.Items = append(order.Items, models.ConsignmentItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
	}
	order.Total = total

	var created *models.ConsignmentOrder
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		created, txErr = s.repo.WithTx(tx).Create(ctx, order)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create consignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consignment")
	}
	return toDTO(order), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list consignments")
	}
	dtos := make([]*ConsignmentDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDTO(&items[i]))
	}
	return pagination.NewPage(dtos, params, total), nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error) {
	return s.transition(ctx, id, enums.ConsignmentStatusClosed)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*ConsignmentDTO, error) {
	return s.transition(ctx, id, enums.ConsignmentStatusCanceled)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.ConsignmentStatus) (*ConsignmentDTO, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "consignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consignment")
		}
		if order.Status != enums.ConsignmentStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "consignment is not open")
		}

		order.Status = target
		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update consignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func toDTO(order *models.ConsignmentOrder) *ConsignmentDTO {
	if order == nil {
		return nil
	}
	dto := &ConsignmentDTO{
		ID:        order.ID,
		PartyID:   order.PartyID,
		Operation: order.Operation,
		Status:    order.Status,
		Total:     order.Total,
		Notes:     order.Notes,
		Items:     make([]ItemDTO, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Party != nil {
		dto.PartyName = order.Party.Name
	}
	for i := range order.Items {
		item := order.Items[i]
		line := ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
