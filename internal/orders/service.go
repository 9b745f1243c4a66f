package orders

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

// Service exposes the consignment order lifecycle.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*OrderDTO, error)
	Return(ctx context.Context, orderID uuid.UUID, input ReturnInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// CheckoutInput holds the payload for handing goods out.
type CheckoutInput struct {
	PartyID    uuid.UUID
	OccurredAt *time.Time
	Notes      *string
	Lines      []CheckoutLine
}

// CheckoutLine is one requested product quantity.
type CheckoutLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// ReturnInput holds the payload for settling a round.
type ReturnInput struct {
	Lines      []ReturnLine
	DebtCharge decimal.Decimal
	Note       *string
}

// ReturnLine reports how much of one product came back.
type ReturnLine struct {
	ProductID    uuid.UUID
	QuantityBack decimal.Decimal
}

type partyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	parties  partyLoader
}

// NewService constructs an order service instance.
func NewService(repo *Repository, dbClient *db.Client, parties partyLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if parties == nil {
		return nil, fmt.Errorf("party repository required")
	}
	return &service{repo: repo, dbClient: dbClient, parties: parties}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*OrderDTO, error) {
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

	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	var orderID uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			PartyID:    party.ID,
			OccurredAt: occurredAt,
			Status:     enums.OrderStatusCheckedOut,
			Total:      decimal.Zero,
			DebtCharge: decimal.Zero,
			Notes:      input.Notes,
		}

		for _, line := range input.Lines {
			product, err := repo.ProductForUpdate(ctx, line.ProductID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeValidation, "product does not exist")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is inactive")
			}
			if !line.Quantity.IsPositive() {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
			}
			if err := checkQuantity(line.Quantity, product.UnitKind); err != nil {
				return err
			}
			if product.Stock.LessThan(line.Quantity) {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{
						"product_id": product.ID,
						"available":  product.Stock,
						"requested":  line.Quantity,
					})
			}

			product.Stock = product.Stock.Sub(line.Quantity)
			product.Category = nil
			if err := repo.SaveProduct(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:    product.ID,
				QuantityOut:  line.Quantity,
				QuantityBack: decimal.Zero,
				UnitPrice:    product.Price,
			})
		}

		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		orderID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *service) Return(ctx context.Context, orderID uuid.UUID, input ReturnInput) (*OrderDTO, error) {
	if input.DebtCharge.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt_charge cannot be negative")
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusCheckedOut {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open for returns")
		}

		items, err := repo.ItemsByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		returned := make(map[uuid.UUID]decimal.Decimal, len(input.Lines))
		for _, line := range input.Lines {
			returned[line.ProductID] = line.QuantityBack
		}

		lines := make([]SettlementLine, 0, len(items))
		for i := range items {
			item := &items[i]
			back, ok := returned[item.ProductID]
			if ok {
				if back.IsNegative() {
					return pkgerrors.New(pkgerrors.CodeValidation, "quantity_back cannot be negative")
				}
				if back.GreaterThan(item.QuantityOut) {
					return pkgerrors.New(pkgerrors.CodeValidation, "quantity_back exceeds quantity_out").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
			} else {
				back = decimal.Zero
			}

			if item.Product != nil {
				if item.Product.NoReturn {
					back = decimal.Zero
				} else if err := checkQuantity(back, item.Product.UnitKind); err != nil {
					return err
				}
			}

			if back.IsPositive() {
				product, err := repo.ProductForUpdate(ctx, item.ProductID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
				product.Stock = product.Stock.Add(back)
				product.Category = nil
				if err := repo.SaveProduct(ctx, product); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
				}
			}

			item.QuantityBack = back
			item.Product = nil
			if err := repo.UpdateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
			}
			lines = append(lines, SettlementLine{
				QuantityOut:  item.QuantityOut,
				QuantityBack: item.QuantityBack,
				UnitPrice:    item.UnitPrice,
			})
		}

		order.DebtCharge = input.DebtCharge
		order.Total = OrderTotal(lines, input.DebtCharge)
		order.Status = enums.OrderStatusFinalized
		if input.Note != nil && *input.Note != "" {
			if order.Notes != nil && *order.Notes != "" {
				merged := *order.Notes + "\n" + *input.Note
				order.Notes = &merged
			} else {
				order.Notes = input.Note
			}
		}
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toDTO(order), nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]*OrderDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDTO(&items[i]))
	}
	return pagination.NewPage(dtos, params, total), nil
}

// DeleteOrder removes the order and its lines. Stock is restored only for
// rounds still checked out, since finalized rounds already reconciled it.
func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status == enums.OrderStatusCheckedOut {
			items, err := repo.ItemsByOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
			}
			for i := range items {
				item := items[i]
				outstanding := item.QuantityOut.Sub(item.QuantityBack)
				if !outstanding.IsPositive() {
					continue
				}
				product, err := repo.ProductForUpdate(ctx, item.ProductID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
				product.Stock = product.Stock.Add(outstanding)
				product.Category = nil
				if err := repo.SaveProduct(ctx, product); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
				}
			}
		}

		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func checkQuantity(qty decimal.Decimal, kind enums.UnitKind) error {
	if qty.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if kind == enums.UnitKindDiscrete && !qty.Equal(qty.Truncate(0)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a whole number for this product")
	}
	return nil
}
