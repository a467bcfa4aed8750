package core

import "strings"

// InvoiceFilter narrows an invoice list. Zero fields match everything.
type InvoiceFilter struct {
	// Search matches client name or invoice number, case-insensitively.
	Search    string
	Status    Status
	StartDate Date
	EndDate   Date
}

// IsEmpty reports whether no criterion is set.
func (f InvoiceFilter) IsEmpty() bool {
	return f.Search == "" && f.Status == "" && f.StartDate.IsEmpty() && f.EndDate.IsEmpty()
}

func (f InvoiceFilter) Match(inv Invoice) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(inv.Client.Name), q) &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), q) {
			return false
		}
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if !f.StartDate.IsEmpty() && inv.Date.Before(f.StartDate.Time) {
		return false
	}
	if !f.EndDate.IsEmpty() && inv.Date.After(f.EndDate.Time) {
		return false
	}
	return true
}

// Apply returns the invoices matching f, keeping their order.
func (f InvoiceFilter) Apply(invoices []Invoice) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Match(inv) {
			out = append(out, inv)
		}
	}
	return out
}
