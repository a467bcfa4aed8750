package cli

import (
	"context"
	"errors"

	"invoicer/internal/backend"
	"invoicer/internal/backup"
	"invoicer/internal/config"
	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/pdf"
	"invoicer/internal/repository"
	"invoicer/internal/services"
)

// App bundles everything a command needs once startup succeeded.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Repo      *repository.Repository
	Invoices  *services.InvoiceService
	Contacts  *services.ContactService
	Company   *services.CompanyService
	Backup    *backup.Service
	Exporter  *pdf.Exporter
	closeFunc backend.CleanupFunc
}

// NewApp opens the configured store, initializes the storage keys and wires
// the services on top of it. Callers must Close the app.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fail("backend config", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fail("open store", err)
	}

	repo := repository.New(res.Store, repository.WithLogger(logger))
	if err := repo.InitializeStorage(ctx); err != nil {
		if res.Cleanup != nil {
			err = errors.Join(err, res.Cleanup())
		}
		return nil, fail("initialize storage", err)
	}

	defaults := services.Defaults{
		Currency:     core.Currency(cfg.DefaultCurrency),
		TaxRate:      cfg.DefaultTaxRate,
		PaymentTerms: cfg.DefaultPaymentTerms,
	}
	opt := services.WithLogger(logger)
	return &App{
		Config:   cfg,
		Logger:   logger,
		Repo:     repo,
		Invoices: services.NewInvoiceService(repo, defaults, opt),
		Contacts: services.NewContactService(repo, opt),
		Company:  services.NewCompanyService(repo, opt),
		Backup:   backup.NewService(repo, backup.WithLogger(logger)),
		Exporter: pdf.NewExporter(pdf.NewFPDFRenderer(), cfg.ExportDir,
			pdf.WithLogger(logger), pdf.WithWorkers(cfg.PDFExportWorkers)),
		closeFunc: res.Cleanup,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closeFunc == nil {
		return nil
	}
	return a.closeFunc()
}
