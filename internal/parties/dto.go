package parties

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
)

// PartyDTO is the API representation of a party.
type PartyDTO struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Email           *string           `json:"email,omitempty"`
	CPF             *string           `json:"cpf,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Address         *string           `json:"address,omitempty"`
	Status          enums.PartyStatus `json:"status"`
	AccumulatedDebt decimal.Decimal   `json:"accumulated_debt"`
	OutstandingDebt *decimal.Decimal  `json:"outstanding_debt,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toDTO(party *models.Party) *PartyDTO {
	if party == nil {
		return nil
	}
	return &PartyDTO{
		ID:              party.ID,
		Name:            party.Name,
		Email:           party.Email,
		CPF:             party.CPF,
		Phone:           party.Phone,
		Address:         party.Address,
		Status:          party.Status,
		AccumulatedDebt: party.AccumulatedDebt,
		CreatedAt:       party.CreatedAt,
		UpdatedAt:       party.UpdatedAt,
	}
}
