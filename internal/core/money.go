// Package core provides the invoice data model and its arithmetic.
//
// This file contains the totals calculations and currency formatting.
// Amounts are plain float64 values; rounding to cents only happens when
// an amount is formatted for display.
package core

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var enPrinter = message.NewPrinter(language.English)

// LineTotal returns quantity * price without rounding.
func LineTotal(quantity, price float64) float64 {
	return quantity * price
}

// Subtotal sums the stored Total of every item.
//
// It trusts each item's Total rather than recomputing quantity * price, so
// callers must keep items in sync (see LineItem.SetQuantity and SetPrice).
func Subtotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Total
	}
	return sum
}

// TaxAmount returns subtotal * (ratePercent / 100).
func TaxAmount(subtotal, ratePercent float64) float64 {
	return subtotal * (ratePercent / 100)
}

// Total returns subtotal + taxAmount.
func Total(subtotal, taxAmount float64) float64 {
	return subtotal + taxAmount
}

// FormatCurrency renders amount en-US style with two decimals, digit grouping and
// the currency symbol in front.
//
// Examples:
//   FormatCurrency(1234.5, USD) -> "$1,234.50"
//   FormatCurrency(10, GBP)     -> "£10.00"
//   FormatCurrency(-5, USD)     -> "-$5.00"
//   FormatCurrency(1, "EUR")    -> "$1.00" (unsupported codes fall back to USD)
func FormatCurrency(amount float64, code Currency) string {
	if !code.IsValid() {
		code = USD
	}
	d := RoundCents(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + code.Symbol() + enPrinter.Sprintf("%.2f", d.InexactFloat64())
}

// RoundCents rounds amount half away from zero to two decimal places.
func RoundCents(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// SumTotals adds up the grand totals of invoices, ignoring currency.
func SumTotals(invoices []Invoice) float64 {
	var sum float64
	for _, inv := range invoices {
		sum += inv.Total
	}
	return sum
}
