package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	"github.com/licimar/licimar-backend/internal/auditlog"
	consignsvc "github.com/licimar/licimar-backend/internal/consignments"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

type createConsignmentRequest struct {
	PartyID   string                   `json:"party_id" validate:"required,uuid"`
	Operation string                   `json:"operation" validate:"required"`
	Notes     *string                  `json:"notes,omitempty"`
	Lines     []consignmentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type consignmentLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  string `json:"quantity" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

func (p createConsignmentRequest) toInput() (consignsvc.CreateInput, error) {
	input := consignsvc.CreateInput{Notes: p.Notes}

	partyID, err := parseUUIDField(p.PartyID, "party_id")
	if err != nil {
		return input, err
	}
	input.PartyID = partyID

	operation := enums.ConsignmentOperation(p.Operation)
	if !operation.IsValid() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation").
			WithDetails(map[string]any{"field": "operation"})
	}
	input.Operation = operation

	for _, line := range p.Lines {
		productID, err := parseUUIDField(line.ProductID, "product_id")
		if err != nil {
			return input, err
		}
		qty, err := parseDecimal(line.Quantity, "quantity")
		if err != nil {
			return input, err
		}
		price, err := parseDecimal(line.UnitPrice, "unit_price")
		if err != nil {
			return input, err
		}
		input.Lines = append(input.Lines, consignsvc.Line{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	return input, nil
}

// CreateConsignment opens a negotiated bulk-deal consignment.
func CreateConsignment(svc consignsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consignment service unavailable"))
			return
		}

		var payload createConsignmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "consignment.created", fmt.Sprintf("consignment %s (%s) opened for party %s", deal.ID, deal.Operation, deal.PartyID))
		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

// GetConsignment returns one consignment with its lines.
func GetConsignment(svc consignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// ListConsignments returns a filtered, paginated consignment listing.
func ListConsignments(svc consignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consignment service unavailable"))
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

		filter := consignsvc.ListFilter{PartyID: partyID}
		query := r.URL.Query()
		if raw := strings.TrimSpace(query.Get("operation")); raw != "" {
			operation := enums.ConsignmentOperation(raw)
			if !operation.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation").
					WithDetails(map[string]any{"field": "operation"}))
				return
			}
			filter.Operation = operation
		}
		if raw := strings.TrimSpace(query.Get("status")); raw != "" {
			status := enums.ConsignmentStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = status
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CloseConsignment marks an open consignment as closed.
func CloseConsignment(svc consignsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Close(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "consignment.closed", fmt.Sprintf("consignment %s closed", deal.ID))
		responses.WriteSuccess(w, deal)
	}
}

// CancelConsignment marks an open consignment as canceled.
func CancelConsignment(svc consignsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "consignment.canceled", fmt.Sprintf("consignment %s canceled", deal.ID))
		responses.WriteSuccess(w, deal)
	}
}
