package repository

import (
	"context"

	"invoicer/internal/core"
	"invoicer/internal/log"
)

// SaveInvoice upserts inv by id. Totals are recomputed first. An existing
// invoice is replaced at the same position and gets a fresh UpdatedAt;
// a new one is appended as given.
func (r *Repository) SaveInvoice(ctx context.Context, inv core.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv = inv.Clone()
	inv.Recalculate()

	invoices := r.invoices(ctx)
	replaced := false
	for i := range invoices {
		if invoices[i].ID == inv.ID {
			inv.UpdatedAt = r.now().UTC()
			invoices[i] = inv
			replaced = true
			break
		}
	}
	if !replaced {
		invoices = append(invoices, inv)
	}
	if err := r.set(ctx, KeyInvoices, invoices); err != nil {
		return err
	}

	op := log.OpCreate
	if replaced {
		op = log.OpUpdate
	}
	fields := log.NewFields().
		WithInvoice(inv.ID, inv.InvoiceNumber, string(inv.Status), inv.Total, string(inv.Currency)).
		WithOperation(op)
	r.logger.InfoContext(ctx, "Invoice saved", fields.ToSlice()...)
	return nil
}

// GetInvoices returns every invoice in insertion order, or an empty slice.
func (r *Repository) GetInvoices(ctx context.Context) []core.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices(ctx)
}

func (r *Repository) invoices(ctx context.Context) []core.Invoice {
	var invoices []core.Invoice
	if !r.get(ctx, KeyInvoices, &invoices) || invoices == nil {
		return []core.Invoice{}
	}
	return invoices
}

// GetInvoice looks an invoice up by id. The bool is false when it does not exist.
func (r *Repository) GetInvoice(ctx context.Context, id string) (core.Invoice, bool) {
	for _, inv := range r.GetInvoices(ctx) {
		if inv.ID == id {
			return inv, true
		}
	}
	return core.Invoice{}, false
}

// DeleteInvoice removes every invoice carrying id. Deleting an unknown id is not an error.
func (r *Repository) DeleteInvoice(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := r.invoices(ctx)
	kept := invoices[:0]
	for _, inv := range invoices {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	if err := r.set(ctx, KeyInvoices, kept); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Invoice deleted",
		log.FieldInvoiceID, id, "removed", len(invoices)-len(kept))
	return nil
}

// GenerateInvoiceNumber suggests the next invoice number from the stored ones.
// Gaps or duplicates in imported data can make it skip or repeat numbers.
func (r *Repository) GenerateInvoiceNumber(ctx context.Context) string {
	invoices := r.GetInvoices(ctx)
	numbers := make([]string, len(invoices))
	for i, inv := range invoices {
		numbers[i] = inv.InvoiceNumber
	}
	return core.NextInvoiceNumber(numbers)
}
