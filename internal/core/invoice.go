package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NewLineItem builds an item with its total already computed.
func NewLineItem(id, description string, quantity, price float64) LineItem {
	return LineItem{
		ID:          id,
		Description: description,
		Quantity:    quantity,
		Price:       price,
		Total:       LineTotal(quantity, price),
	}
}

// SetQuantity updates the quantity and the line total.
func (it *LineItem) SetQuantity(q float64) {
	it.Quantity = q
	it.Recalculate()
}

// SetPrice updates the unit price and the line total.
func (it *LineItem) SetPrice(p float64) {
	it.Price = p
	it.Recalculate()
}

func (it *LineItem) Recalculate() {
	it.Total = LineTotal(it.Quantity, it.Price)
}

// Recalculate recomputes every line total, then subtotal, tax and grand total.
// Stored derived fields are never trusted; every persistence path calls this.
func (inv *Invoice) Recalculate() {
	for i := range inv.Items {
		inv.Items[i].Recalculate()
	}
	inv.Subtotal = Subtotal(inv.Items)
	inv.TaxAmount = TaxAmount(inv.Subtotal, inv.TaxRate)
	inv.Total = Total(inv.Subtotal, inv.TaxAmount)
}

// Clone returns a deep copy so that callers can mutate items freely.
func (inv Invoice) Clone() Invoice {
	inv.Items = append([]LineItem(nil), inv.Items...)
	inv.Company = inv.Company.Clone()
	return inv
}

// Validate checks the fields a user must fill in before an invoice is saved.
func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.Company.Name) == "" {
		return ErrMissingCompany
	}
	if strings.TrimSpace(inv.Client.Name) == "" {
		return ErrMissingClient
	}
	if inv.DueDate.IsEmpty() {
		return ErrMissingDueDate
	}
	if len(inv.Items) == 0 {
		return ErrNoItems
	}
	if !inv.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, inv.Status)
	}
	if !inv.Currency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, inv.Currency)
	}
	return validationError(structValidator().Struct(inv))
}

func (c Contact) Validate() error {
	return validationError(structValidator().Struct(c))
}

func (c CompanyProfile) Validate() error {
	return validationError(structValidator().Struct(c))
}

// ValidationError lists the offending fields of a struct validation failure.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, f+" ("+tag+")")
	}
	sort.Strings(parts)
	return "invalid fields: " + strings.Join(parts, ", ")
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "Invoice.Items[0].Price" -> "Items[0].Price".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
