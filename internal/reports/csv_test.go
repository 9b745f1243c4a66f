package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWriteSalesCSV(t *testing.T) {
	orderID := uuid.New()
	report := &SalesReport{
		Rows: []SalesRow{
			{
				OrderID:      orderID,
				OccurredAt:   time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC),
				PartyName:    "João",
				ProductName:  "Cerveja, Lata",
				QuantityOut:  dec("10"),
				QuantityBack: dec("2"),
				QuantitySold: dec("8"),
				UnitPrice:    dec("3.50"),
				LineTotal:    dec("28.00"),
			},
		},
		TotalQuantity: dec("8"),
		TotalRevenue:  dec("28.00"),
	}

	var buf bytes.Buffer
	if err := WriteSalesCSV(&buf, report); err != nil {
		t.Fatalf("WriteSalesCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header, row, and totals, got %d records", len(records))
	}
	if records[0][0] != "order_id" || records[0][8] != "line_total" {
		t.Fatalf("unexpected header %v", records[0])
	}
	row := records[1]
	if row[0] != orderID.String() {
		t.Fatalf("expected order id, got %s", row[0])
	}
	if row[3] != "Cerveja, Lata" {
		t.Fatalf("expected comma in product name to survive quoting, got %s", row[3])
	}
	if row[8] != "28" && row[8] != "28.00" {
		t.Fatalf("unexpected line total %s", row[8])
	}
	totals := records[2]
	if totals[3] != "totals" {
		t.Fatalf("expected totals marker, got %v", totals)
	}
}

func TestWriteStockCSV(t *testing.T) {
	rows := []StockRow{
		{ProductID: uuid.New(), Name: "Carvão", Stock: dec("2"), MinStock: dec("5"), LowStock: true, IsActive: true},
		{ProductID: uuid.New(), Name: "Gelo", Stock: dec("50"), MinStock: dec("5"), LowStock: false, IsActive: false},
	}

	var buf bytes.Buffer
	if err := WriteStockCSV(&buf, rows); err != nil {
		t.Fatalf("WriteStockCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][4] != "true" {
		t.Fatalf("expected low_stock true, got %s", records[1][4])
	}
	if records[2][5] != "false" {
		t.Fatalf("expected active false, got %s", records[2][5])
	}
}
