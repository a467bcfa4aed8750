// Package http serves the invoicer JSON API on localhost.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"invoicer/internal/backup"
	"invoicer/internal/log"
	"invoicer/internal/middleware/security"
	"invoicer/internal/middleware/trace"
	"invoicer/internal/pdf"
	"invoicer/internal/services"
)

// Deps are the services the API exposes.
type Deps struct {
	Invoices *services.InvoiceService
	Contacts *services.ContactService
	Company  *services.CompanyService
	Backup   *backup.Service
	Exporter *pdf.Exporter
	Logger   *log.Logger
}

type Server struct {
	http.Server
	deps         Deps
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		deps:   deps,
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	r := mux.NewRouter()
	r.Use(trace.Middleware)
	r.Use(log.Middleware(s.logger, trace.RequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/new", s.handleNewInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/next-number", s.handleNextNumber).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleUpdateInvoice).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}", s.handleDeleteInvoice).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id}/duplicate", s.handleDuplicateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/status", s.handleSetStatus).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}/pdf", s.handleInvoicePDF).Methods(http.MethodGet)

	api.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleCreateContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id}", s.handleGetContact).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", s.handleUpdateContact).Methods(http.MethodPut)
	api.HandleFunc("/contacts/{id}", s.handleDeleteContact).Methods(http.MethodDelete)

	api.HandleFunc("/company", s.handleGetCompany).Methods(http.MethodGet)
	api.HandleFunc("/company", s.handleSaveCompany).Methods(http.MethodPut)

	api.HandleFunc("/backup", s.handleExportBackup).Methods(http.MethodGet)
	api.HandleFunc("/backup", s.handleImportBackup).Methods(http.MethodPost)
	api.HandleFunc("/backup/schema", s.handleBackupSchema).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
