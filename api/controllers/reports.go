package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/api/validators"
	reportsvc "github.com/licimar/licimar-backend/internal/reports"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

func salesFilter(r *http.Request) (reportsvc.SalesFilter, error) {
	var filter reportsvc.SalesFilter

	partyID, err := queryUUID(r, "party_id")
	if err != nil {
		return filter, err
	}
	productID, err := queryUUID(r, "product_id")
	if err != nil {
		return filter, err
	}
	from, err := queryDate(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return filter, err
	}

	filter.PartyID = partyID
	filter.ProductID = productID
	filter.From = from
	filter.To = to
	return filter, nil
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func writeCSVHeader(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
}

func csvFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, time.Now().UTC().Format("20060102"))
}

// SalesReport lists settled order lines, optionally as a CSV download.
func SalesReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		filter, err := salesFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Sales(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			writeCSVHeader(w, csvFilename("sales"))
			if err := reportsvc.WriteSalesCSV(w, report); err != nil && logg != nil {
				logg.Error(r.Context(), "write sales csv", err)
			}
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// TopProductsReport ranks products by settled quantity.
func TopProductsReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		filter, err := salesFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.TopProducts(r.Context(), filter, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			writeCSVHeader(w, csvFilename("top_products"))
			if err := reportsvc.WriteTopProductsCSV(w, rows); err != nil && logg != nil {
				logg.Error(r.Context(), "write top products csv", err)
			}
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// VendorPerformanceReport aggregates finalized orders per vendor.
func VendorPerformanceReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		filter, err := salesFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.VendorPerformance(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			writeCSVHeader(w, csvFilename("vendor_performance"))
			if err := reportsvc.WriteVendorPerformanceCSV(w, rows); err != nil && logg != nil {
				logg.Error(r.Context(), "write vendor performance csv", err)
			}
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// DashboardReport summarizes recent sales, stock, and open orders.
func DashboardReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		report, err := svc.Dashboard(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// StockReport snapshots current stock with low-stock flags.
func StockReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		rows, err := svc.Stock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			writeCSVHeader(w, csvFilename("stock"))
			if err := reportsvc.WriteStockCSV(w, rows); err != nil && logg != nil {
				logg.Error(r.Context(), "write stock csv", err)
			}
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
