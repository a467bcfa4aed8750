package core

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix starts every generated invoice number.
const InvoiceNumberPrefix = "INV-"

// NextInvoiceNumber derives the next number from the existing ones.
//
// Each number has its non-digit characters stripped and is read as an integer
// (unparseable or empty -> 0). The result is the maximum plus one, formatted as
// INV- followed by at least four digits.
//
// Examples:
//   NextInvoiceNumber(nil)                              -> "INV-0001"
//   NextInvoiceNumber([]string{"INV-0001", "INV-0003"}) -> "INV-0004"
//   NextInvoiceNumber([]string{"2024/17"})              -> "INV-202418"
func NextInvoiceNumber(numbers []string) string {
	var highest int64
	for _, n := range numbers {
		if v := digitsValue(n); v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix, highest+1)
}

func digitsValue(s string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
