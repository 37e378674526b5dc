package utils

import "github.com/shopspring/decimal"

// LineTotal is a single priced line of an order.
type LineTotal struct {
	UnitPrice float64
	Quantity  int
}

// OrderTotal sums unit price × quantity over lines in decimal and rounds to cents.
func OrderTotal(lines []LineTotal) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}
