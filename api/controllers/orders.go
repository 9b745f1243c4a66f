package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	"github.com/licimar/licimar-backend/internal/auditlog"
	ordersvc "github.com/licimar/licimar-backend/internal/orders"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

type checkoutRequest struct {
	PartyID    string                `json:"party_id" validate:"required,uuid"`
	OccurredAt *time.Time            `json:"occurred_at,omitempty"`
	Notes      *string               `json:"notes,omitempty"`
	Lines      []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type checkoutLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  string `json:"quantity" validate:"required"`
}

type returnRequest struct {
	Lines      []returnLineRequest `json:"lines" validate:"required,min=1,dive"`
	DebtCharge *string             `json:"debt_charge,omitempty"`
	Note       *string             `json:"note,omitempty"`
}

type returnLineRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid"`
	QuantityBack string `json:"quantity_back" validate:"required"`
}

func (p checkoutRequest) toInput() (ordersvc.CheckoutInput, error) {
	input := ordersvc.CheckoutInput{
		OccurredAt: p.OccurredAt,
		Notes:      p.Notes,
	}

	partyID, err := parseUUIDField(p.PartyID, "party_id")
	if err != nil {
		return input, err
	}
	input.PartyID = partyID

	for _, line := range p.Lines {
		productID, err := parseUUIDField(line.ProductID, "product_id")
		if err != nil {
			return input, err
		}
		qty, err := parseDecimal(line.Quantity, "quantity")
		if err != nil {
			return input, err
		}
		input.Lines = append(input.Lines, ordersvc.CheckoutLine{
			ProductID: productID,
			Quantity:  qty,
		})
	}

	return input, nil
}

func (p returnRequest) toInput() (ordersvc.ReturnInput, error) {
	input := ordersvc.ReturnInput{
		DebtCharge: decimal.Zero,
		Note:       p.Note,
	}

	if p.DebtCharge != nil {
		charge, err := parseDecimal(*p.DebtCharge, "debt_charge")
		if err != nil {
			return input, err
		}
		input.DebtCharge = charge
	}

	for _, line := range p.Lines {
		productID, err := parseUUIDField(line.ProductID, "product_id")
		if err != nil {
			return input, err
		}
		back, err := parseDecimal(line.QuantityBack, "quantity_back")
		if err != nil {
			return input, err
		}
		input.Lines = append(input.Lines, ordersvc.ReturnLine{
			ProductID:    productID,
			QuantityBack: back,
		})
	}

	return input, nil
}

// Checkout hands goods out to a vendor and opens a consignment order.
func Checkout(svc ordersvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "order.checkout", fmt.Sprintf("order %s checked out for party %s", order.ID, order.PartyID))
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// Return records what came back unsold and finalizes the order.
func Return(svc ordersvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Return(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "order.finalized", fmt.Sprintf("order %s finalized, total %s", order.ID, order.Total))
		responses.WriteSuccess(w, order)
	}
}

// GetOrder returns one order with its lines.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns a filtered, paginated order listing.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
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
		from, err := queryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := queryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := ordersvc.ListFilter{PartyID: partyID, From: from, To: to}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.OrderStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = status
		}

		page, err := svc.ListOrders(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// DeleteOrder removes one order, restoring checked-out stock. Admin only.
func DeleteOrder(svc ordersvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "order.deleted", fmt.Sprintf("order %s deleted", id))
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
