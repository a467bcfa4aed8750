// Package services provides business logic and orchestration services.
//
// The services sit between the hosts (CLI, HTTP) and the repository. They fill
// in ids, numbers and timestamps, validate input and keep derived totals in
// sync before anything is persisted.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/repository"
)

// Defaults are applied to new invoices.
type Defaults struct {
	Currency     core.Currency
	TaxRate      float64
	PaymentTerms string
}

// StandardDefaults matches the new-invoice form: 8.25% tax, Net 30, US dollars.
var StandardDefaults = Defaults{
	Currency:     core.USD,
	TaxRate:      8.25,
	PaymentTerms: "Net 30",
}

// InvoiceService orchestrates invoice operations over the repository.
type InvoiceService struct {
	repo     *repository.Repository
	defaults Defaults
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithClock overrides the clock used for dates and timestamps.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithIDGenerator overrides uuid generation, mostly for tests.
func WithIDGenerator(f func() string) Option { return func(o *options) { o.newID = f } }

func buildOptions(opts []Option) options {
	o := options{logger: log.Discard(), now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewInvoiceService(repo *repository.Repository, d Defaults, opts ...Option) *InvoiceService {
	o := buildOptions(opts)
	if !d.Currency.IsValid() {
		d.Currency = core.USD
	}
	return &InvoiceService{
		repo:     repo,
		defaults: d,
		logger:   o.logger.WithComponent(log.ComponentInvoice),
		now:      o.now,
		newID:    o.newID,
	}
}

func (s *InvoiceService) today() core.Date {
	return core.DateOf(s.now())
}

// NewInvoiceDefaults returns an unsaved invoice pre-filled the way the form
// starts: next number, today's date, default tax rate, terms and currency,
// the stored company profile and one empty line item.
func (s *InvoiceService) NewInvoiceDefaults(ctx context.Context) core.Invoice {
	inv := core.Invoice{
		InvoiceNumber: s.repo.GenerateInvoiceNumber(ctx),
		Date:          s.today(),
		Items:         []core.LineItem{core.NewLineItem(s.newID(), "", 1, 0)},
		TaxRate:       s.defaults.TaxRate,
		PaymentTerms:  s.defaults.PaymentTerms,
		Status:        core.StatusDraft,
		Currency:      s.defaults.Currency,
	}
	if company, ok := s.repo.GetCompanyProfile(ctx); ok {
		inv.Company = company
	}
	inv.Recalculate()
	return inv
}

// Save validates and persists inv, returning the stored version.
//
// Invoices not yet stored get a uuid (when the id is empty) and creation
// timestamps.
// A missing number is generated, an unset status becomes draft and an unset
// currency or payment terms take the service defaults. Totals are recomputed.
func (s *InvoiceService) Save(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	inv = inv.Clone()
	now := s.now().UTC()

	if inv.ID == "" {
		inv.ID = s.newID()
	}
	if existing, ok := s.repo.GetInvoice(ctx, inv.ID); ok {
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = existing.CreatedAt
		}
	} else {
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = now
		}
		if inv.UpdatedAt.IsZero() {
			inv.UpdatedAt = now
		}
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = s.repo.GenerateInvoiceNumber(ctx)
	}
	if inv.Date.IsEmpty() {
		inv.Date = s.today()
	}
	if inv.Status == "" {
		inv.Status = core.StatusDraft
	}
	if inv.Currency == "" {
		inv.Currency = s.defaults.Currency
	}
	if inv.PaymentTerms == "" {
		inv.PaymentTerms = s.defaults.PaymentTerms
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = s.newID()
		}
	}

	if err := inv.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Invoice rejected",
			log.FieldInvoiceNumber, inv.InvoiceNumber, log.FieldOperation, log.OpValidate, log.FieldError, err)
		return core.Invoice{}, err
	}
	inv.Recalculate()

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}
	if saved, ok := s.repo.GetInvoice(ctx, inv.ID); ok {
		return saved, nil
	}
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, id string) (core.Invoice, error) {
	inv, ok := s.repo.GetInvoice(ctx, id)
	if !ok {
		return core.Invoice{}, fmt.Errorf("invoice %q: %w", id, core.ErrNotFound)
	}
	return inv, nil
}

// Delete removes the invoice, reporting core.ErrNotFound for unknown ids.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// Duplicate returns an unsaved copy of the invoice: new id and number, dated
// today, no due date, draft status and fresh timestamps.
func (s *InvoiceService) Duplicate(ctx context.Context, id string) (core.Invoice, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return core.Invoice{}, err
	}
	now := s.now().UTC()

	dup := src.Clone()
	dup.ID = s.newID()
	dup.InvoiceNumber = s.repo.GenerateInvoiceNumber(ctx)
	dup.Date = core.DateOf(now)
	dup.DueDate = core.Date{}
	dup.Status = core.StatusDraft
	dup.CreatedAt = now
	dup.UpdatedAt = now
	for i := range dup.Items {
		dup.Items[i].ID = s.newID()
	}
	dup.Recalculate()
	return dup, nil
}

// SetStatus changes only the status of a stored invoice.
func (s *InvoiceService) SetStatus(ctx context.Context, id string, status core.Status) (core.Invoice, error) {
	if !status.IsValid() {
		return core.Invoice{}, fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.Status = status
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("update status: %w", err)
	}
	saved, _ := s.repo.GetInvoice(ctx, id)
	return saved, nil
}

// Summary aggregates a list of invoices.
type Summary struct {
	Count int `json:"count"`
	// Total sums invoice totals. Mixed currencies are summed as-is and reported
	// in the currency of the first invoice.
	Total    float64             `json:"total"`
	Currency core.Currency       `json:"currency"`
	ByStatus map[core.Status]int `json:"byStatus"`
}

// List returns the invoices matching f in insertion order with their summary.
func (s *InvoiceService) List(ctx context.Context, f core.InvoiceFilter) ([]core.Invoice, Summary) {
	invoices := f.Apply(s.repo.GetInvoices(ctx))
	sum := Summary{
		Count:    len(invoices),
		Total:    core.SumTotals(invoices),
		Currency: s.defaults.Currency,
		ByStatus: make(map[core.Status]int),
	}
	if len(invoices) > 0 {
		sum.Currency = invoices[0].Currency
	}
	for _, inv := range invoices {
		sum.ByStatus[inv.Status]++
	}
	return invoices, sum
}

// NextNumber suggests the number for the next new invoice.
func (s *InvoiceService) NextNumber(ctx context.Context) string {
	return s.repo.GenerateInvoiceNumber(ctx)
}
