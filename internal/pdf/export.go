package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"invoicer/internal/core"
	"invoicer/internal/fsutil"
	"invoicer/internal/log"
)

// ErrExportFailed wraps every rendering or writing failure.
var ErrExportFailed = errors.New("failed to generate PDF")

// FileName returns "invoice-<number>.pdf". Characters that would escape the
// export directory are replaced with '-'.
func FileName(inv core.Invoice) string {
	number := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(inv.InvoiceNumber))
	number = strings.Trim(number, ".")
	if number == "" {
		number = "draft"
	}
	return "invoice-" + number + ".pdf"
}

type Exporter struct {
	renderer Renderer
	dir      string
	workers  int
	logger   *log.Logger
}

type Option func(*Exporter)

func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) { e.logger = l.WithComponent(log.ComponentPDF) }
}

// WithWorkers bounds the parallelism of ExportAll.
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewExporter(r Renderer, dir string, opts ...Option) *Exporter {
	e := &Exporter{renderer: r, dir: dir, workers: 4, logger: log.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Write renders inv into w. Nothing is written unless rendering succeeds.
func (e *Exporter) Write(ctx context.Context, w io.Writer, inv core.Invoice) error {
	doc, err := e.renderer.Render(ctx, inv)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Export writes inv into the export directory and returns the file path.
// On failure no file, partial or otherwise, is left behind.
func (e *Exporter) Export(ctx context.Context, inv core.Invoice) (string, error) {
	path := filepath.Join(e.dir, FileName(inv))

	doc, err := e.renderer.Render(ctx, inv)
	if err != nil {
		e.logger.ErrorContext(ctx, "PDF render failed",
			log.FieldInvoiceNumber, inv.InvoiceNumber, log.FieldError, err)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := fsutil.WriteAtomic(path, 0o644, doc.Output); err != nil {
		e.logger.ErrorContext(ctx, "PDF write failed",
			log.FieldInvoiceNumber, inv.InvoiceNumber, log.FieldFile, path, log.FieldError, err)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	e.logger.InfoContext(ctx, "PDF exported",
		log.FieldInvoiceNumber, inv.InvoiceNumber, log.FieldFile, path)
	return path, nil
}

// ExportAll exports invoices concurrently and returns the paths in input order.
// The first failure cancels the remaining work; files already written stay.
func (e *Exporter) ExportAll(ctx context.Context, invoices []core.Invoice) ([]string, error) {
	paths := make([]string, len(invoices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, inv := range invoices {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := e.Export(ctx, inv)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "PDF batch exported", log.FieldCount, len(paths))
	return paths, nil
}
