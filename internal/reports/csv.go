package reports

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteSalesCSV renders the sales report as CSV.
func WriteSalesCSV(w io.Writer, report *SalesReport) error {
	cw := csv.NewWriter(w)
	header := []string{"order_id", "occurred_at", "party", "product", "quantity_out", "quantity_back", "quantity_sold", "unit_price", "line_total"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			row.OrderID.String(),
			row.OccurredAt.Format("2006-01-02 15:04:05"),
			row.PartyName,
			row.ProductName,
			row.QuantityOut.String(),
			row.QuantityBack.String(),
			row.QuantitySold.String(),
			row.UnitPrice.String(),
			row.LineTotal.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	totals := []string{"", "", "", "totals", "", "", report.TotalQuantity.String(), "", report.TotalRevenue.String()}
	if err := cw.Write(totals); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteTopProductsCSV renders the top products report as CSV.
func WriteTopProductsCSV(w io.Writer, rows []TopProductRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "product", "quantity_sold", "revenue"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.ProductID.String(), row.ProductName, row.QuantitySold.String(), row.Revenue.String()}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVendorPerformanceCSV renders the vendor performance report as CSV.
func WriteVendorPerformanceCSV(w io.Writer, rows []VendorPerformanceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"party_id", "party", "orders", "revenue", "outstanding_debt"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.PartyID.String(), row.PartyName, strconv.FormatInt(row.Orders, 10), row.Revenue.String(), row.Outstanding.String()}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStockCSV renders the stock snapshot as CSV.
func WriteStockCSV(w io.Writer, rows []StockRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "name", "stock", "min_stock", "low_stock", "active"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ProductID.String(),
			row.Name,
			row.Stock.String(),
			row.MinStock.String(),
			boolString(row.LowStock),
			boolString(row.IsActive),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
