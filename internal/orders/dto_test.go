package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/licimar/licimar-backend/pkg/enums"
)

func TestOrderDTOJSONRoundTrip(t *testing.T) {
	notes := "paid in cash"
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	original := OrderDTO{
		ID:         uuid.New(),
		PartyID:    uuid.New(),
		PartyName:  "João da Silva",
		OccurredAt: now,
		Status:     enums.OrderStatusFinalized,
		Total:      dec("77.00"),
		DebtCharge: dec("14.00"),
		Notes:      &notes,
		Items: []OrderItemDTO{
			{
				ID:           uuid.New(),
				ProductID:    uuid.New(),
				ProductName:  "Cerveja lata",
				QuantityOut:  dec("10"),
				QuantityBack: dec("2"),
				QuantitySold: dec("8"),
				UnitPrice:    dec("3.50"),
				LineTotal:    dec("28.00"),
			},
			{
				ID:           uuid.New(),
				ProductID:    uuid.New(),
				ProductName:  "Espetinho",
				QuantityOut:  dec("5"),
				QuantityBack: dec("0"),
				QuantitySold: dec("5"),
				UnitPrice:    dec("7.00"),
				LineTotal:    dec("35.00"),
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}

	var decoded OrderDTO
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}

	if decoded.ID != original.ID || decoded.PartyID != original.PartyID {
		t.Fatalf("ids changed: got %s/%s want %s/%s", decoded.ID, decoded.PartyID, original.ID, original.PartyID)
	}
	if decoded.Status != enums.OrderStatusFinalized {
		t.Fatalf("status = %q, want %q", decoded.Status, enums.OrderStatusFinalized)
	}
	if !decoded.Total.Equal(original.Total) {
		t.Fatalf("total = %s, want %s", decoded.Total, original.Total)
	}
	if !decoded.DebtCharge.Equal(original.DebtCharge) {
		t.Fatalf("debt charge = %s, want %s", decoded.DebtCharge, original.DebtCharge)
	}
	if decoded.Notes == nil || *decoded.Notes != notes {
		t.Fatalf("notes = %v, want %q", decoded.Notes, notes)
	}
	if !decoded.OccurredAt.Equal(original.OccurredAt) {
		t.Fatalf("occurred_at = %s, want %s", decoded.OccurredAt, original.OccurredAt)
	}

	if len(decoded.Items) != len(original.Items) {
		t.Fatalf("items = %d, want %d", len(decoded.Items), len(original.Items))
	}
	for i, item := range decoded.Items {
		want := original.Items[i]
		if item.ID != want.ID || item.ProductID != want.ProductID || item.ProductName != want.ProductName {
			t.Fatalf("item %d identity changed", i)
		}
		if !item.QuantityOut.Equal(want.QuantityOut) ||
			!item.QuantityBack.Equal(want.QuantityBack) ||
			!item.QuantitySold.Equal(want.QuantitySold) {
			t.Fatalf("item %d quantities changed", i)
		}
		if !item.UnitPrice.Equal(want.UnitPrice) || !item.LineTotal.Equal(want.LineTotal) {
			t.Fatalf("item %d money fields changed", i)
		}
	}
}

func TestOrderDTOOmitsEmptyOptionalFields(t *testing.T) {
	raw, err := json.Marshal(OrderDTO{ID: uuid.New(), PartyID: uuid.New(), Items: []OrderItemDTO{}})
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		t.Fatalf("unmarshal into map: %v", err)
	}
	if _, ok := asMap["party_name"]; ok {
		t.Fatal("empty party_name should be omitted")
	}
	if _, ok := asMap["notes"]; ok {
		t.Fatal("nil notes should be omitted")
	}
}
