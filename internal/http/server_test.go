package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoicer/internal/backup"
	"invoicer/internal/core"
	"invoicer/internal/kv/memory"
	"invoicer/internal/pdf"
	"invoicer/internal/repository"
	"invoicer/internal/services"
)

var now = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := func() time.Time { return now }
	repo := repository.New(memory.New(), repository.WithClock(clock))
	n := 0
	ids := func() string { n++; return fmt.Sprintf("id-%d", n) }
	opts := []services.Option{services.WithClock(clock), services.WithIDGenerator(ids)}
	return NewServer(":0", Deps{
		Invoices: services.NewInvoiceService(repo, services.StandardDefaults, opts...),
		Contacts: services.NewContactService(repo, opts...),
		Company:  services.NewCompanyService(repo, opts...),
		Backup:   backup.NewService(repo, backup.WithClock(clock)),
		Exporter: pdf.NewExporter(pdf.NewFPDFRenderer(), t.TempDir()),
	})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

const invoiceBody = `{
	"dueDate": "2025-12-03",
	"company": {"name": "Acme Ltd"},
	"client": {"name": "Globex"},
	"items": [{"description": "Retainer", "quantity": 1, "price": 1000}],
	"taxRate": 10,
	"currency": "GBP"
}`

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	rr = do(t, srv, http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPatch, "/api/invoices", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method = %d", rr.Code)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/invoices", invoiceBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rr.Code, rr.Body.String())
	}
	created := decode[core.Invoice](t, rr)
	if created.InvoiceNumber != "INV-0001" || created.Total != 1100 || created.Status != core.StatusDraft {
		t.Fatalf("created %+v", created)
	}
	if rr.Header().Get("Location") != "/api/invoices/"+created.ID {
		t.Fatalf("location = %q", rr.Header().Get("Location"))
	}

	rr = do(t, srv, http.MethodGet, "/api/invoices/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/invoices/"+created.ID+"/status", `{"status":"paid"}`)
	if rr.Code != http.StatusOK || decode[core.Invoice](t, rr).Status != core.StatusPaid {
		t.Fatalf("status = %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPut, "/api/invoices/"+created.ID+"/status", `{"status":"void"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/invoices/next-number", "")
	if got := decode[map[string]string](t, rr)["invoiceNumber"]; got != "INV-0002" {
		t.Fatalf("next number = %q", got)
	}

	rr = do(t, srv, http.MethodPost, "/api/invoices/"+created.ID+"/duplicate", "")
	dup := decode[core.Invoice](t, rr)
	if rr.Code != http.StatusOK || dup.InvoiceNumber != "INV-0002" || !dup.DueDate.IsEmpty() {
		t.Fatalf("duplicate = %d %+v", rr.Code, dup)
	}
	rr = do(t, srv, http.MethodPost, "/api/invoices/"+created.ID+"/duplicate?save=true&dueDate=2025-12-31", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("saved duplicate = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/invoices?status=paid", "")
	list := decode[invoiceListResponse](t, rr)
	if list.Summary.Count != 1 || list.FormattedTotal != "£1,100.00" {
		t.Fatalf("list = %+v", list)
	}

	rr = do(t, srv, http.MethodDelete, "/api/invoices/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/invoices/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rr.Code)
	}
}

func TestInvoiceValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/invoices", `{"client":{"name":"x"}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing company = %d", rr.Code)
	}

	body := strings.Replace(invoiceBody, `"quantity": 1`, `"quantity": 0`, 1)
	rr = do(t, srv, http.MethodPost, "/api/invoices", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero quantity = %d", rr.Code)
	}
	if resp := decode[errorResponse](t, rr); resp.Fields["Items[0].Quantity"] == "" {
		t.Fatalf("field errors = %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/invoices", `{"unknown": true}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/invoices?from=yesterday", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad filter date = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPut, "/api/invoices/missing", invoiceBody)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("update missing = %d", rr.Code)
	}
}

func TestInvoicePDF(t *testing.T) {
	srv := newTestServer(t)
	created := decode[core.Invoice](t, do(t, srv, http.MethodPost, "/api/invoices", invoiceBody))

	rr := do(t, srv, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf = %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("content type = %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "invoice-INV-0001.pdf") {
		t.Fatalf("disposition = %q", rr.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestContactsAndCompany(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/company", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("company before save = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPut, "/api/company", `{"name":"Acme Ltd","paymentDetails":{"sortCode":"12-34-56"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("save company = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/contacts", `{"name":"Globex","email":"ap@globex.test"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create contact = %d %s", rr.Code, rr.Body.String())
	}
	c := decode[core.Contact](t, rr)
	if c.Type != core.ContactClient || c.ID == "" {
		t.Fatalf("contact = %+v", c)
	}

	rr = do(t, srv, http.MethodPut, "/api/contacts/"+c.ID, `{"name":"Globex Corp","type":"company"}`)
	if rr.Code != http.StatusOK || decode[core.Contact](t, rr).Name != "Globex Corp" {
		t.Fatalf("update contact = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPost, "/api/contacts", `{"name":"Bad","email":"nope"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad email = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/contacts", "")
	if got := decode[[]core.Contact](t, rr); len(got) != 1 {
		t.Fatalf("contacts = %+v", got)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/contacts/"+c.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete contact = %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/contacts/"+c.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted contact = %d", rr.Code)
	}
}

func TestBackupEndpoints(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/invoices", invoiceBody)

	rr := do(t, srv, http.MethodGet, "/api/backup", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "invoice_manager_backup_2025-11-03.json") {
		t.Fatalf("disposition = %q", rr.Header().Get("Content-Disposition"))
	}
	exported := rr.Body.String()

	empty := `{"invoices": [], "clients": [], "company": null}`
	rr = do(t, srv, http.MethodPost, "/api/backup", empty)
	if rr.Code != http.StatusConflict {
		t.Fatalf("unconfirmed import = %d", rr.Code)
	}
	if resp := decode[errorResponse](t, rr); resp.Summary == nil || resp.Summary.Invoices != 0 {
		t.Fatalf("declined response = %+v", resp)
	}
	if list := decode[invoiceListResponse](t, do(t, srv, http.MethodGet, "/api/invoices", "")); list.Summary.Count != 1 {
		t.Fatalf("unconfirmed import changed data")
	}

	rr = do(t, srv, http.MethodPost, "/api/backup?confirm=true", `{"invoices": {}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid backup = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/backup?confirm=true", empty)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirmed import = %d %s", rr.Code, rr.Body.String())
	}
	if list := decode[invoiceListResponse](t, do(t, srv, http.MethodGet, "/api/invoices", "")); list.Summary.Count != 0 {
		t.Fatalf("import did not replace data")
	}

	rr = do(t, srv, http.MethodPost, "/api/backup?confirm=true", exported)
	if rr.Code != http.StatusOK || decode[backup.Summary](t, rr).Invoices != 1 {
		t.Fatalf("restore = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/backup/schema", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"invoices"`) {
		t.Fatalf("schema = %d", rr.Code)
	}
}
