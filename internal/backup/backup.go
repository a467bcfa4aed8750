// Package backup exports every collection as one JSON snapshot and restores it.
//
// Import is destructive: it overwrites invoices, contacts and the company
// profile wholesale, so it only proceeds after a Confirmer agrees.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"invoicer/internal/core"
	"invoicer/internal/fsutil"
	"invoicer/internal/log"
	"invoicer/internal/repository"
)

// Version is written into every snapshot.
const Version = "1.0"

var (
	ErrInvalidBackup  = errors.New("invalid backup file")
	ErrImportDeclined = errors.New("import declined")
)

// Snapshot is the backup document.
type Snapshot struct {
	Invoices   []core.Invoice       `json:"invoices"`
	Clients    []core.Contact       `json:"clients"`
	Company    *core.CompanyProfile `json:"company"`
	ExportDate time.Time            `json:"exportDate"`
	Version    string               `json:"version"`
}

// Marshal renders the snapshot as indented JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return b, nil
}

func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	b, err := s.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Summary describes a parsed snapshot so that a user can decide whether to import it.
type Summary struct {
	Invoices   int       `json:"invoices"`
	Clients    int       `json:"clients"`
	HasCompany bool      `json:"hasCompany"`
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}

func (s Snapshot) Summary() Summary {
	return Summary{
		Invoices:   len(s.Invoices),
		Clients:    len(s.Clients),
		HasCompany: s.Company != nil,
		ExportDate: s.ExportDate,
		Version:    s.Version,
	}
}

// Confirmer approves a destructive import.
type Confirmer interface {
	Confirm(ctx context.Context, s Summary) (bool, error)
}

type ConfirmFunc func(ctx context.Context, s Summary) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, s Summary) (bool, error) { return f(ctx, s) }

// Confirmed approves every import. Use it only when the user already agreed,
// e.g. through a --yes flag.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, Summary) (bool, error) { return true, nil })

// FileName returns the conventional backup file name for the day of now.
func FileName(now time.Time) string {
	return "invoice_manager_backup_" + now.Format(core.DateLayout) + ".json"
}

// Parse validates doc and decodes it. The top level must be an object holding
// an "invoices" array and a "clients" array; "company" may be an object, null
// or absent.
func Parse(doc []byte) (*Snapshot, error) {
	doc = bytes.TrimSpace(doc)
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidBackup)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidBackup)
	}
	for _, key := range []string{"invoices", "clients"} {
		if !root.Get(key).IsArray() {
			return nil, fmt.Errorf("%w: %q must be an array", ErrInvalidBackup, key)
		}
	}
	if c := root.Get("company"); c.Exists() && c.Type != gjson.Null && !c.IsObject() {
		return nil, fmt.Errorf("%w: \"company\" must be an object or null", ErrInvalidBackup)
	}

	var s Snapshot
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if s.Invoices == nil {
		s.Invoices = []core.Invoice{}
	}
	if s.Clients == nil {
		s.Clients = []core.Contact{}
	}
	return &s, nil
}

// Service reads and replaces the repository contents.
type Service struct {
	repo   *repository.Repository
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l.WithComponent(log.ComponentBackup) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: log.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export captures the current contents of every collection.
func (s *Service) Export(ctx context.Context) Snapshot {
	snap := Snapshot{
		Invoices:   s.repo.GetInvoices(ctx),
		Clients:    s.repo.GetContacts(ctx),
		ExportDate: s.now().UTC(),
		Version:    Version,
	}
	if company, ok := s.repo.GetCompanyProfile(ctx); ok {
		snap.Company = &company
	}
	s.logger.InfoContext(ctx, "Backup exported",
		log.FieldOperation, log.OpExport,
		"invoices", len(snap.Invoices), "clients", len(snap.Clients))
	return snap
}

// ExportFile writes a snapshot into dir under FileName and returns its path.
func (s *Service) ExportFile(ctx context.Context, dir string) (string, error) {
	snap := s.Export(ctx)
	b, err := snap.Marshal()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(snap.ExportDate))
	if err := fsutil.WriteFileAtomic(path, b, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	s.logger.InfoContext(ctx, "Backup written", log.FieldFile, path)
	return path, nil
}

// Import parses doc, asks confirm and, only if it agrees, replaces all stored
// collections with the snapshot contents. Invoice totals are recomputed. A
// snapshot without a company clears the stored profile.
func (s *Service) Import(ctx context.Context, doc []byte, confirm Confirmer) (Summary, error) {
	snap, err := Parse(doc)
	if err != nil {
		s.logger.WarnContext(ctx, "Backup rejected", log.FieldOperation, log.OpValidate, log.FieldError, err)
		return Summary{}, err
	}
	sum := snap.Summary()

	ok, err := confirm.Confirm(ctx, sum)
	if err != nil {
		return sum, fmt.Errorf("confirm import: %w", err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "Backup import declined")
		return sum, ErrImportDeclined
	}

	if err := s.repo.ReplaceAll(ctx, snap.Invoices, snap.Clients, snap.Company); err != nil {
		return sum, fmt.Errorf("import backup: %w", err)
	}
	s.logger.InfoContext(ctx, "Backup imported",
		log.FieldOperation, log.OpImport,
		"invoices", sum.Invoices, "clients", sum.Clients, "company", sum.HasCompany)
	return sum, nil
}
