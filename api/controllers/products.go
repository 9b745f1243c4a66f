package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	"github.com/licimar/licimar-backend/internal/auditlog"
	catalogsvc "github.com/licimar/licimar-backend/internal/catalog"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
	Stock       *string `json:"stock,omitempty"`
	MinStock    *string `json:"min_stock,omitempty"`
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	NoReturn    *bool   `json:"no_return,omitempty"`
	UnitKind    string  `json:"unit_kind" validate:"required"`
	WeightKg    *string `json:"weight_kg,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Stock       *string `json:"stock,omitempty"`
	MinStock    *string `json:"min_stock,omitempty"`
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	NoReturn    *bool   `json:"no_return,omitempty"`
	UnitKind    *string `json:"unit_kind,omitempty"`
	WeightKg    *string `json:"weight_kg,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (p createProductRequest) toCreateInput() (catalogsvc.CreateProductInput, error) {
	input := catalogsvc.CreateProductInput{
		Name:        p.Name,
		Description: p.Description,
	}

	price, err := parseDecimal(p.Price, "price")
	if err != nil {
		return input, err
	}
	input.Price = price

	if p.Stock != nil {
		stock, err := parseDecimal(*p.Stock, "stock")
		if err != nil {
			return input, err
		}
		input.Stock = stock
	}
	if p.MinStock != nil {
		minStock, err := parseDecimal(*p.MinStock, "min_stock")
		if err != nil {
			return input, err
		}
		input.MinStock = minStock
	}
	if p.WeightKg != nil {
		weight, err := parseOptionalDecimal(p.WeightKg, "weight_kg")
		if err != nil {
			return input, err
		}
		input.WeightKg = weight
	}
	if p.CategoryID != nil {
		id, err := parseUUIDField(*p.CategoryID, "category_id")
		if err != nil {
			return input, err
		}
		input.CategoryID = &id
	}
	if p.NoReturn != nil {
		input.NoReturn = *p.NoReturn
	}

	kind := enums.UnitKind(p.UnitKind)
	if !kind.IsValid() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit kind").
			WithDetails(map[string]any{"field": "unit_kind"})
	}
	input.UnitKind = kind
	input.ImageURL = p.ImageURL

	return input, nil
}

func (p updateProductRequest) toUpdateInput() (catalogsvc.UpdateProductInput, error) {
	input := catalogsvc.UpdateProductInput{
		Name:        p.Name,
		Description: p.Description,
		NoReturn:    p.NoReturn,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
	}

	var err error
	if input.Price, err = parseOptionalDecimal(p.Price, "price"); err != nil {
		return input, err
	}
	if input.Stock, err = parseOptionalDecimal(p.Stock, "stock"); err != nil {
		return input, err
	}
	if input.MinStock, err = parseOptionalDecimal(p.MinStock, "min_stock"); err != nil {
		return input, err
	}
	if input.WeightKg, err = parseOptionalDecimal(p.WeightKg, "weight_kg"); err != nil {
		return input, err
	}
	if p.CategoryID != nil {
		id, err := parseUUIDField(*p.CategoryID, "category_id")
		if err != nil {
			return input, err
		}
		input.CategoryID = &id
	}
	if p.UnitKind != nil {
		kind := enums.UnitKind(*p.UnitKind)
		if !kind.IsValid() {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit kind").
				WithDetails(map[string]any{"field": "unit_kind"})
		}
		input.UnitKind = &kind
	}

	return input, nil
}

// CreateProduct adds a product to the catalog.
func CreateProduct(svc catalogsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "product.created", fmt.Sprintf("product %s created", product.Name))
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns one product.
func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns a filtered, paginated product listing.
func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := queryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := catalogsvc.ProductFilter{
			CategoryID: categoryID,
			Search:     strings.TrimSpace(query.Get("search")),
			ActiveOnly: query.Get("active") == "true",
			LowStock:   query.Get("low_stock") == "true",
		}

		page, err := svc.ListProducts(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// UpdateProduct mutates one product.
func UpdateProduct(svc catalogsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "product.updated", fmt.Sprintf("product %s updated", product.Name))
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes or deactivates one product per the deletion policy.
func DeleteProduct(svc catalogsvc.Service, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeleteProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, audit, "product.deleted", fmt.Sprintf("product %s %s", id, result.Decision))
		responses.WriteSuccess(w, result)
	}
}
