package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
)

// OrderDTO is the API representation of a consignment round.
type OrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	PartyID    uuid.UUID         `json:"party_id"`
	PartyName  string            `json:"party_name,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Status     enums.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	DebtCharge decimal.Decimal   `json:"debt_charge"`
	Notes      *string           `json:"notes,omitempty"`
	Items      []OrderItemDTO    `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// OrderItemDTO is one line of an order with derived settlement values.
type OrderItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	QuantityOut  decimal.Decimal `json:"quantity_out"`
	QuantityBack decimal.Decimal `json:"quantity_back"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

func toDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:         order.ID,
		PartyID:    order.PartyID,
		OccurredAt: order.OccurredAt,
		Status:     order.Status,
		Total:      order.Total,
		DebtCharge: order.DebtCharge,
		Notes:      order.Notes,
		Items:      make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	if order.Party != nil {
		dto.PartyName = order.Party.Name
	}
	for i := range order.Items {
		item := order.Items[i]
		line := OrderItemDTO{
			ID:           item.ID,
			ProductID:    item.ProductID,
			QuantityOut:  item.QuantityOut,
			QuantityBack: item.QuantityBack,
			QuantitySold: item.QuantitySold(),
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
