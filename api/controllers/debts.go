package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	"github.com/licimar/licimar-backend/internal/auditlog"
	debtsvc "github.com/licimar/licimar-backend/internal/debts"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

type registerDebtRequest struct {
	PartyID      string     `json:"party_id" validate:"required,uuid"`
	Amount       string     `json:"amount" validate:"required"`
	Reason       *string    `json:"reason,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

type registerPaymentRequest struct {
	PartyID string     `json:"party_id" validate:"required,uuid"`
	Amount  string     `json:"amount" validate:"required"`
	OrderID *string    `json:"order_id,omitempty" validate:"omitempty,uuid"`
	Note    *string    `json:"note,omitempty"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// RegisterDebt opens a debt against a party's ledger.
func RegisterDebt(svc debtsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debt service unavailable"))
			return
		}

		var payload registerDebtRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyID, err := parseUUIDField(payload.PartyID, "party_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseDecimal(payload.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debt, err := svc.RegisterDebt(r.Context(), debtsvc.RegisterDebtInput{
			PartyID:      partyID,
			Amount:       amount,
			Reason:       payload.Reason,
			RegisteredAt: payload.RegisteredAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "debt.registered", fmt.Sprintf("debt %s of %s registered for party %s", debt.ID, debt.Amount, debt.PartyID))
		responses.WriteSuccessStatus(w, http.StatusCreated, debt)
	}
}

// GetDebt returns one debt with its payments.
func GetDebt(svc debtsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debt service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debt, err := svc.GetDebt(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, debt)
	}
}

// ListDebts returns a filtered, paginated debt listing, oldest first.
func ListDebts(svc debtsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debt service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyID, err := queryUUID(r, "party_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := debtsvc.ListFilter{PartyID: partyID}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.DebtStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = status
		}

		page, err := svc.ListDebts(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// DeleteDebt removes one debt unless payments were recorded against it.
func DeleteDebt(svc debtsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debt service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeleteDebt(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "debt.deleted", fmt.Sprintf("debt %s %s", id, result.Decision))
		responses.WriteSuccess(w, result)
	}
}

// RegisterPayment applies an amount against a party's open debts oldest
// first and reports the allocation.
func RegisterPayment(svc debtsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debt service unavailable"))
			return
		}

		var payload registerPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyID, err := parseUUIDField(payload.PartyID, "party_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseDecimal(payload.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := debtsvc.RegisterPaymentInput{
			PartyID: partyID,
			Amount:  amount,
			Note:    payload.Note,
			PaidAt:  payload.PaidAt,
		}
		if payload.OrderID != nil {
			orderID, err := parseUUIDField(*payload.OrderID, "order_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.OrderID = &orderID
		}

		result, err := svc.RegisterPayment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "debt.payment", fmt.Sprintf("payment of %s applied for party %s", result.AppliedAmount, result.PartyID))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
