package orders

import "github.com/shopspring/decimal"

// SettlementLine carries the quantities and snapshot price of one order line
// entering settlement.
type SettlementLine struct {
	QuantityOut  decimal.Decimal
	QuantityBack decimal.Decimal
	UnitPrice    decimal.Decimal
}

// QuantitySold nets the returned quantity against what went out, floored at
// zero so an over-return never produces a negative sale.
func QuantitySold(out, back decimal.Decimal) decimal.Decimal {
	sold := out.Sub(back)
	if sold.IsNegative() {
		return decimal.Zero
	}
	return sold
}

// LineTotal prices the sold quantity at the checkout snapshot.
func LineTotal(out, back, unitPrice decimal.Decimal) decimal.Decimal {
	return QuantitySold(out, back).Mul(unitPrice).Round(2)
}

// OrderTotal sums the line totals and adds the debt charge collected with
// this settlement.
func OrderTotal(lines []SettlementLine, debtCharge decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line.QuantityOut, line.QuantityBack, line.UnitPrice))
	}
	return total.Add(debtCharge).Round(2)
}
