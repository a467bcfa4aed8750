// Package repository persists invoices, contacts and the company profile.
//
// Every collection lives under one fixed key as a JSON document. Mutations read
// the whole collection, change it in memory and write it back in one Set call.
// Reads never fail: a missing, unreadable or corrupt value is logged and treated
// as the collection's default (empty list, or no company).
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"invoicer/internal/core"
	"invoicer/internal/kv"
	"invoicer/internal/log"
)

// Store keys. The names are part of the backup format.
const (
	KeyInvoices = "invoices"
	KeyContacts = "savedClients"
	KeyCompany  = "company"
)

// Keys lists every key the repository owns.
func Keys() []string {
	return []string{KeyInvoices, KeyContacts, KeyCompany}
}

type Repository struct {
	// mu serialises read-modify-write cycles when the store is shared, e.g. by the HTTP host.
	mu     sync.Mutex
	store  kv.Store
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Repository)

// WithClock overrides the clock used for updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l.WithComponent(log.ComponentRepository) }
}

func New(store kv.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// get decodes the value under key into dst. It reports false, leaving dst
// untouched, when the key is missing or cannot be read or decoded.
func (r *Repository) get(ctx context.Context, key string, dst any) bool {
	b, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "Read failed, using default", log.FieldKey, key, log.FieldError, err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		r.logger.WarnContext(ctx, "Stored value is corrupt, using default", log.FieldKey, key, log.FieldError, err)
		return false
	}
	return true
}

func (r *Repository) set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// InitializeStorage writes empty defaults for keys that were never set.
// It is idempotent and safe to call on every startup.
func (r *Repository) InitializeStorage(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defaults := []struct {
		key   string
		value any
	}{
		{KeyInvoices, []core.Invoice{}},
		{KeyContacts, []core.Contact{}},
		{KeyCompany, nil},
	}
	for _, d := range defaults {
		_, found, err := r.store.Get(ctx, d.key)
		if err != nil {
			return fmt.Errorf("check %s: %w", d.key, err)
		}
		if found {
			continue
		}
		if err := r.set(ctx, d.key, d.value); err != nil {
			return err
		}
		r.logger.InfoContext(ctx, "Initialized storage key", log.FieldKey, d.key)
	}
	return nil
}

// ReplaceAll overwrites all three collections. A nil company stores null.
// Backup import is the only caller; it must obtain user confirmation first.
func (r *Repository) ReplaceAll(ctx context.Context, invoices []core.Invoice, contacts []core.Contact, company *core.CompanyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if invoices == nil {
		invoices = []core.Invoice{}
	}
	if contacts == nil {
		contacts = []core.Contact{}
	}
	for i := range invoices {
		invoices[i].Recalculate()
	}
	if err := r.set(ctx, KeyInvoices, invoices); err != nil {
		return err
	}
	if err := r.set(ctx, KeyContacts, contacts); err != nil {
		return err
	}
	if err := r.set(ctx, KeyCompany, company); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Replaced all collections",
		"invoices", len(invoices), "contacts", len(contacts), "company", company != nil)
	return nil
}
