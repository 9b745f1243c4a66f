package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
)

// SalesFilter narrows the sales report.
type SalesFilter struct {
	PartyID   *uuid.UUID
	ProductID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// SalesRow is one settled order line.
type SalesRow struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	PartyName    string          `json:"party_name"`
	ProductName  string          `json:"product_name"`
	QuantityOut  decimal.Decimal `json:"quantity_out"`
	QuantityBack decimal.Decimal `json:"quantity_back"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// SalesReport bundles the rows with their grand totals.
type SalesReport struct {
	Rows          []SalesRow      `json:"rows"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// TopProductRow ranks a product by settled quantity and revenue.
type TopProductRow struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// VendorPerformanceRow summarizes one party's settled rounds.
type VendorPerformanceRow struct {
	PartyID     uuid.UUID       `json:"party_id"`
	PartyName   string          `json:"party_name"`
	Orders      int64           `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	Outstanding decimal.Decimal `json:"outstanding_debt"`
}

// StockRow is one product's stock snapshot.
type StockRow struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
	LowStock  bool            `json:"low_stock"`
	IsActive  bool            `json:"is_active"`
}

// DashboardBestSeller names the period's top product by settled quantity.
type DashboardBestSeller struct {
	ProductName  string          `json:"product_name,omitempty"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
}

// DashboardDailySales is one day of the trailing sales series.
type DashboardDailySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// DashboardReport is the landing-page summary over the trailing 30 days.
type DashboardReport struct {
	PeriodSales   decimal.Decimal       `json:"period_sales"`
	TodaySales    decimal.Decimal       `json:"today_sales"`
	LowStockCount int64                 `json:"low_stock_count"`
	ActiveVendors int64                 `json:"active_vendors"`
	OpenOrders    int64                 `json:"open_orders"`
	BestSeller    DashboardBestSeller   `json:"best_seller"`
	DailySales    []DashboardDailySales `json:"daily_sales"`
}

// Service builds the read-only reports.
type Service interface {
	Sales(ctx context.Context, filter SalesFilter) (*SalesReport, error)
	TopProducts(ctx context.Context, filter SalesFilter, limit int) ([]TopProductRow, error)
	VendorPerformance(ctx context.Context, filter SalesFilter) ([]VendorPerformanceRow, error)
	Stock(ctx context.Context) ([]StockRow, error)
	Dashboard(ctx context.Context, now time.Time) (*DashboardReport, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs a report service over the shared connection.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db}, nil
}

func (s *service) Sales(ctx context.Context, filter SalesFilter) (*SalesReport, error) {
	items, err := s.settledItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		Rows:          make([]SalesRow, 0, len(items)),
		TotalQuantity: decimal.Zero,
		TotalRevenue:  decimal.Zero,
	}
	for i := range items {
		item := items[i]
		row := SalesRow{
			QuantityOut:  item.QuantityOut,
			QuantityBack: item.QuantityBack,
			QuantitySold: item.QuantitySold(),
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		}
		row.OrderID = item.OrderID
		if item.Product != nil {
			row.ProductName = item.Product.Name
		}
		if order := s.orderOf(items, i); order != nil {
			row.OccurredAt = order.OccurredAt
			if order.Party != nil {
				row.PartyName = order.Party.Name
			}
		}
		report.Rows = append(report.Rows, row)
		report.TotalQuantity = report.TotalQuantity.Add(row.QuantitySold)
		report.TotalRevenue = report.TotalRevenue.Add(row.LineTotal)
	}
	return report, nil
}

func (s *service) TopProducts(ctx context.Context, filter SalesFilter, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	items, err := s.settledItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	type agg struct {
		name     string
		quantity decimal.Decimal
		revenue  decimal.Decimal
	}
	byProduct := map[uuid.UUID]*agg{}
	for i := range items {
		item := items[i]
		a, ok := byProduct[item.ProductID]
		if !ok {
			a = &agg{quantity: decimal.Zero, revenue: decimal.Zero}
			if item.Product != nil {
				a.name = item.Product.Name
			}
			byProduct[item.ProductID] = a
		}
		a.quantity = a.quantity.Add(item.QuantitySold())
		a.revenue = a.revenue.Add(item.LineTotal())
	}

	rows := make([]TopProductRow, 0, len(byProduct))
	for id, a := range byProduct {
		rows = append(rows, TopProductRow{
			ProductID:    id,
			ProductName:  a.name,
			QuantitySold: a.quantity,
			Revenue:      a.revenue,
		})
	}
	sortTopProducts(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *service) VendorPerformance(ctx context.Context, filter SalesFilter) ([]VendorPerformanceRow, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Party").
		Where("status = ?", enums.OrderStatusFinalized)
	if filter.PartyID != nil {
		q = q.Where("party_id = ?", *filter.PartyID)
	}
	if filter.From != nil {
		q = q.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("occurred_at <= ?", *filter.To)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	type agg struct {
		name    string
		count   int64
		revenue decimal.Decimal
	}
	byParty := map[uuid.UUID]*agg{}
	for i := range orders {
		o := orders[i]
		a, ok := byParty[o.PartyID]
		if !ok {
			a = &agg{revenue: decimal.Zero}
			if o.Party != nil {
				a.name = o.Party.Name
			}
			byParty[o.PartyID] = a
		}
		a.count++
		a.revenue = a.revenue.Add(o.Total)
	}

	rows := make([]VendorPerformanceRow, 0, len(byParty))
	for id, a := range byParty {
		outstanding, err := s.outstandingDebt(ctx, id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, VendorPerformanceRow{
			PartyID:     id,
			PartyName:   a.name,
			Orders:      a.count,
			Revenue:     a.revenue,
			Outstanding: outstanding,
		})
	}
	sortVendorRows(rows)
	return rows, nil
}

func (s *service) Stock(ctx context.Context) ([]StockRow, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	rows := make([]StockRow, 0, len(products))
	for i := range products {
		p := products[i]
		rows = append(rows, StockRow{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
			LowStock:  p.LowStock(),
			IsActive:  p.IsActive,
		})
	}
	return rows, nil
}

const dashboardPeriodDays = 30

func (s *service) Dashboard(ctx context.Context, now time.Time) (*DashboardReport, error) {
	now = now.UTC()
	periodStart := now.AddDate(0, 0, -dashboardPeriodDays)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	items, err := s.settledItems(ctx, SalesFilter{From: &periodStart, To: &now})
	if err != nil {
		return nil, err
	}

	report := &DashboardReport{
		PeriodSales: decimal.Zero,
		TodaySales:  decimal.Zero,
		BestSeller:  DashboardBestSeller{QuantitySold: decimal.Zero},
		DailySales:  make([]DashboardDailySales, 0, 7),
	}

	type agg struct {
		name     string
		quantity decimal.Decimal
	}
	byProduct := map[uuid.UUID]*agg{}
	byDay := map[string]decimal.Decimal{}
	for i := range items {
		item := items[i]
		total := item.LineTotal()
		report.PeriodSales = report.PeriodSales.Add(total)

		occurred := item.order.OccurredAt.UTC()
		if !occurred.Before(todayStart) {
			report.TodaySales = report.TodaySales.Add(total)
		}
		day := occurred.Format("2006-01-02")
		byDay[day] = byDay[day].Add(total)

		a, ok := byProduct[item.ProductID]
		if !ok {
			a = &agg{quantity: decimal.Zero}
			if item.Product != nil {
				a.name = item.Product.Name
			}
			byProduct[item.ProductID] = a
		}
		a.quantity = a.quantity.Add(item.QuantitySold())
	}

	for _, a := range byProduct {
		if a.quantity.GreaterThan(report.BestSeller.QuantitySold) {
			report.BestSeller = DashboardBestSeller{ProductName: a.name, QuantitySold: a.quantity}
		}
	}

	for offset := 6; offset >= 0; offset-- {
		day := todayStart.AddDate(0, 0, -offset).Format("2006-01-02")
		report.DailySales = append(report.DailySales, DashboardDailySales{
			Date:  day,
			Sales: byDay[day],
		})
	}

	err = s.db.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ? AND stock <= min_stock", true).
		Count(&report.LowStockCount).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock")
	}

	err = s.db.WithContext(ctx).Model(&models.Party{}).
		Where("status = ?", enums.PartyStatusActive).
		Count(&report.ActiveVendors).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active vendors")
	}

	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", enums.OrderStatusCheckedOut).
		Count(&report.OpenOrders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open orders")
	}

	return report, nil
}

func (s *service) settledItems(ctx context.Context, filter SalesFilter) ([]itemWithOrder, error) {
	var orders []models.Order
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Party").
		Preload("Items").
		Preload("Items.Product").
		Where("status = ?", enums.OrderStatusFinalized)
	if filter.PartyID != nil {
		q = q.Where("party_id = ?", *filter.PartyID)
	}
	if filter.From != nil {
		q = q.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("occurred_at <= ?", *filter.To)
	}
	if err := q.Order("occurred_at ASC").Find(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	var items []itemWithOrder
	for i := range orders {
		order := &orders[i]
		for j := range order.Items {
			item := order.Items[j]
			if filter.ProductID != nil && item.ProductID != *filter.ProductID {
				continue
			}
			items = append(items, itemWithOrder{OrderItem: item, order: order})
		}
	}
	return items, nil
}

type itemWithOrder struct {
	models.OrderItem
	order *models.Order
}

func (s *service) orderOf(items []itemWithOrder, i int) *models.Order {
	return items[i].order
}

func (s *service) outstandingDebt(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	var debts []models.Debt
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Where("party_id = ? AND status IN ?", partyID, []enums.DebtStatus{enums.DebtStatusOpen, enums.DebtStatusPartiallyPaid}).
		Find(&debts).Error
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debts")
	}
	total := decimal.Zero
	for i := range debts {
		total = total.Add(debts[i].Outstanding())
	}
	return total, nil
}

func sortTopProducts(rows []TopProductRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].QuantitySold.GreaterThan(rows[j].QuantitySold)
	})
}

func sortVendorRows(rows []VendorPerformanceRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Revenue.GreaterThan(rows[j].Revenue)
	})
}
