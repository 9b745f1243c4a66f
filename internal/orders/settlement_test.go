package orders

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQuantitySold(t *testing.T) {
	cases := []struct {
		name string
		out  string
		back string
		want string
	}{
		{"allSold", "10", "0", "10"},
		{"partialReturn", "10", "3", "7"},
		{"fullReturn", "5", "5", "0"},
		{"overReturnFloorsAtZero", "5", "8", "0"},
		{"fractional", "2.5", "1.0", "1.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QuantitySold(dec(tc.out), dec(tc.back))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("QuantitySold(%s, %s) = %s, want %s", tc.out, tc.back, got, tc.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		name  string
		out   string
		back  string
		price string
		want  string
	}{
		{"wholeUnits", "10", "4", "3.50", "21.00"},
		{"fractionalWeight", "2.5", "1.0", "28.00", "42.00"},
		{"roundsToCents", "3", "0", "0.333", "1.00"},
		{"overReturnIsFree", "2", "5", "9.99", "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LineTotal(dec(tc.out), dec(tc.back), dec(tc.price))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("LineTotal(%s, %s, %s) = %s, want %s", tc.out, tc.back, tc.price, got, tc.want)
			}
		})
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []SettlementLine{
		{QuantityOut: dec("10"), QuantityBack: dec("4"), UnitPrice: dec("3.50")},
		{QuantityOut: dec("2.5"), QuantityBack: dec("1.0"), UnitPrice: dec("28.00")},
	}

	total := OrderTotal(lines, dec("15.00"))
	if !total.Equal(dec("78.00")) {
		t.Fatalf("OrderTotal = %s, want 78.00", total)
	}
}

func TestOrderTotalEmptyLines(t *testing.T) {
	total := OrderTotal(nil, dec("5.00"))
	if !total.Equal(dec("5.00")) {
		t.Fatalf("OrderTotal = %s, want 5.00", total)
	}
}
