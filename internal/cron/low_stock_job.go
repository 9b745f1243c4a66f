package cron

import (
	"context"
	"fmt"

	"github.com/licimar/licimar-backend/internal/catalog"
	"github.com/licimar/licimar-backend/pkg/logger"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

// LowStockJob scans the catalog for active products at or below their
// minimum stock and logs a warning per hit, so operators catch refill
// needs without polling the report endpoint.
type LowStockJob struct {
	repo *catalog.Repository
	logg *logger.Logger
}

// NewLowStockJob builds the scan job.
func NewLowStockJob(repo *catalog.Repository, logg *logger.Logger) (*LowStockJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LowStockJob{repo: repo, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *LowStockJob) Name() string { return "low_stock_scan" }

// Run walks every low-stock page and emits one warning per product.
func (j *LowStockJob) Run(ctx context.Context) error {
	filter := catalog.ProductFilter{ActiveOnly: true, LowStock: true}
	params := pagination.Params{Page: 1, PerPage: pagination.MaxPerPage}

	total := 0
	for {
		products, _, err := j.repo.ListProducts(ctx, filter, params)
		if err != nil {
			return fmt.Errorf("list low stock products: %w", err)
		}
		for i := range products {
			p := products[i]
			entryCtx := j.logg.WithFields(ctx, map[string]any{
				"product_id": p.ID.String(),
				"product":    p.Name,
				"stock":      p.Stock.String(),
				"min_stock":  p.MinStock.String(),
			})
			j.logg.Warn(entryCtx, "product at or below minimum stock")
		}
		total += len(products)
		if len(products) < params.PerPage {
			break
		}
		params.Page++
	}

	j.logg.Info(j.logg.WithField(ctx, "flagged", total), "low stock scan finished")
	return nil
}
