package controllers

import (
	"fmt"
	"net/http"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	"github.com/licimar/licimar-backend/internal/auditlog"
	rulesvc "github.com/licimar/licimar-backend/internal/billingrules"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

type createRuleRequest struct {
	RangeStart  string  `json:"range_start" validate:"required"`
	RangeEnd    string  `json:"range_end" validate:"required"`
	Percentage  string  `json:"percentage" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type updateRuleRequest struct {
	RangeStart  *string `json:"range_start,omitempty"`
	RangeEnd    *string `json:"range_end,omitempty"`
	Percentage  *string `json:"percentage,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type applyDiscountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// CreateBillingRule registers a discount range. Admin only.
func CreateBillingRule(svc rulesvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		var payload createRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rulesvc.RuleInput{Description: payload.Description}
		var err error
		if input.RangeStart, err = parseDecimal(payload.RangeStart, "range_start"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.RangeEnd, err = parseDecimal(payload.RangeEnd, "range_end"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Percentage, err = parseDecimal(payload.Percentage, "percentage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.CreateRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "billing_rule.created", fmt.Sprintf("rule %s created", rule.ID))
		responses.WriteSuccessStatus(w, http.StatusCreated, rule)
	}
}

// GetBillingRule returns one rule.
func GetBillingRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.GetRule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rule)
	}
}

// ListBillingRules returns a paginated rule listing.
func ListBillingRules(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListRules(r.Context(), r.URL.Query().Get("active") == "true", params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// UpdateBillingRule mutates one rule. Admin only.
func UpdateBillingRule(svc rulesvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rulesvc.UpdateRuleInput{
			Description: payload.Description,
			IsActive:    payload.IsActive,
		}
		if input.RangeStart, err = parseOptionalDecimal(payload.RangeStart, "range_start"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.RangeEnd, err = parseOptionalDecimal(payload.RangeEnd, "range_end"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Percentage, err = parseOptionalDecimal(payload.Percentage, "percentage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpdateRule(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "billing_rule.updated", fmt.Sprintf("rule %s updated", rule.ID))
		responses.WriteSuccess(w, rule)
	}
}

// DeleteBillingRule removes one rule. Admin only.
func DeleteBillingRule(svc rulesvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "billing_rule.deleted", fmt.Sprintf("rule %s deleted", id))
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// PreviewDiscount applies the active rule set to an arbitrary amount.
func PreviewDiscount(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing rule service unavailable"))
			return
		}

		var payload applyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := parseDecimal(payload.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplyDiscount(r.Context(), amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
