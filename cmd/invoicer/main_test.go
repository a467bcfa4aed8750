package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"invoicer/internal/backup"
)

// run executes the CLI against a file backend rooted in dir.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), append([]string{"invoicer", "--env-file", filepath.Join(dir, "missing.env")}, args...))
	return out.String(), err
}

const companyJSON = `{"name":"Acme Ltd","email":"billing@acme.test","paymentDetails":{"accountName":"Acme","accountNumber":"12345678","sortCode":"12-34-56"}}`

const invoiceJSON = `{
  "dueDate": "2025-04-30",
  "client": {"name": "Globex"},
  "items": [{"description": "Consulting", "quantity": 2, "price": 120}],
  "taxRate": 8.25,
  "currency": "GBP"
}`

func TestInvoiceLifecycle(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, dir, companyJSON, "company", "save", "--file", "-"); err != nil {
		t.Fatalf("company save: %v", err)
	}
	out, err := run(t, dir, invoiceJSON, "invoice", "save", "-f", "-")
	if err != nil {
		t.Fatalf("invoice save: %v", err)
	}
	if !strings.Contains(out, "INV-0001") || !strings.Contains(out, "£259.80") {
		t.Fatalf("unexpected save output %q", out)
	}

	out, err = run(t, dir, "", "invoice", "list", "--search", "globex")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "1 invoice(s), total £259.80") {
		t.Fatalf("unexpected list output %q", out)
	}

	out, err = run(t, dir, "", "invoice", "next-number")
	if err != nil || strings.TrimSpace(out) != "INV-0002" {
		t.Fatalf("next-number = %q, %v", out, err)
	}

	pdfDir := filepath.Join(dir, "pdfs")
	out, err = run(t, dir, "", "pdf", "--all", "--out", pdfDir)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(pdfDir, "invoice-INV-0001.pdf") {
		t.Fatalf("unexpected pdf output %q", out)
	}
	b, err := os.ReadFile(filepath.Join(pdfDir, "invoice-INV-0001.pdf"))
	if err != nil || !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("pdf file missing or invalid: %v", err)
	}
}

func TestBackupImportNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, companyJSON, "company", "save", "-f", "-"); err != nil {
		t.Fatalf("company save: %v", err)
	}
	if _, err := run(t, dir, invoiceJSON, "invoice", "save", "-f", "-"); err != nil {
		t.Fatalf("invoice save: %v", err)
	}

	backupDir := filepath.Join(dir, "backups")
	out, err := run(t, dir, "", "backup", "export", "--out", backupDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := strings.TrimSpace(out)
	if !strings.HasPrefix(filepath.Base(path), "invoice_manager_backup_") {
		t.Fatalf("unexpected backup path %q", path)
	}

	if _, err := run(t, dir, invoiceJSON, "invoice", "save", "-f", "-"); err != nil {
		t.Fatalf("second invoice save: %v", err)
	}

	out, err = run(t, dir, "n\n", "backup", "import", path)
	if !errors.Is(err, backup.ErrImportDeclined) {
		t.Fatalf("declined import: expected ErrImportDeclined, got %v", err)
	}
	if !strings.Contains(out, "1 invoice(s)") || !strings.Contains(out, "[y/N]") {
		t.Fatalf("prompt missing summary: %q", out)
	}
	out, _ = run(t, dir, "", "invoice", "next-number")
	if strings.TrimSpace(out) != "INV-0003" {
		t.Fatalf("declined import changed data, next number %q", out)
	}

	if _, err := run(t, dir, "", "backup", "import", "--yes", path); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, _ = run(t, dir, "", "invoice", "next-number")
	if strings.TrimSpace(out) != "INV-0002" {
		t.Fatalf("import did not restore data, next number %q", out)
	}
}

func TestBackupImportRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"invoices": {}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, dir, "y\n", "backup", "import", bad)
	if !errors.Is(err, backup.ErrInvalidBackup) {
		t.Fatalf("expected invalid backup error, got %v", err)
	}
	if strings.Contains(out, "[y/N]") {
		t.Fatalf("invalid file reached the prompt")
	}
}

func TestUnknownInvoice(t *testing.T) {
	if _, err := run(t, t.TempDir(), "", "invoice", "show", "nope"); err == nil {
		t.Fatalf("expected not found error")
	}
}
