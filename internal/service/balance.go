package service

import (
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
)

// Totals are derived on every read from the order's items and payments; they
// are never stored.
type Totals struct {
	Total      decimal.Decimal
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
	Paid       decimal.Decimal
	Balance    decimal.Decimal
}

// ComputeTotals folds line items and payments into the order's money summary.
// Balance never goes below zero.
func ComputeTotals(order database.Order, items []database.OrderItem, payments []database.OrderPayment) Totals {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(NumericToDecimal(it.UnitPrice).Mul(decimal.NewFromInt32(it.Quantity)))
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(NumericToDecimal(p.Amount))
	}

	discount := NumericToDecimal(order.Discount)
	final := total.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	balance := final.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return Totals{
		Total:      total,
		Discount:   discount,
		FinalTotal: final,
		Paid:       paid,
		Balance:    balance,
	}
}

// settledMethod is the header payment method for a fully paid order: the only
// method used, or mixed.
func settledMethod(payments []database.OrderPayment) string {
	method := ""
	for _, p := range payments {
		if method == "" {
			method = p.Method
			continue
		}
		if p.Method != method {
			return enum.PaymentMethodMixed
		}
	}
	return method
}
