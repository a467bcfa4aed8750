package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/pdf"
	"invoicer/internal/services"
)

type invoiceListResponse struct {
	Invoices []core.Invoice   `json:"invoices"`
	Summary  services.Summary `json:"summary"`
	// FormattedTotal is Summary.Total rendered in Summary.Currency.
	FormattedTotal string `json:"formattedTotal"`
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := ParseInvoiceFilter(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpList)
		return
	}
	invoices, sum := s.deps.Invoices.List(r.Context(), f)
	writeJSON(w, http.StatusOK, invoiceListResponse{
		Invoices:       invoices,
		Summary:        sum,
		FormattedTotal: core.FormatCurrency(sum.Total, sum.Currency),
	})
}

func (s *Server) handleNewInvoice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Invoices.NewInvoiceDefaults(r.Context()))
}

func (s *Server) handleNextNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"invoiceNumber": s.deps.Invoices.NextNumber(r.Context())})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.deps.Invoices.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := decodeJSON(w, r, &inv); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// POST always creates; an id in the body is ignored.
	inv.ID = ""
	saved, err := s.deps.Invoices.Save(r.Context(), inv)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	w.Header().Set("Location", "/api/invoices/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.deps.Invoices.Get(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	var inv core.Invoice
	if err := decodeJSON(w, r, &inv); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	inv.ID = id

	saved, err := s.deps.Invoices.Save(r.Context(), inv)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Invoices.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateInvoice returns an unsaved copy, or saves it when save=true.
func (s *Server) handleDuplicateInvoice(w http.ResponseWriter, r *http.Request) {
	dup, err := s.deps.Invoices.Duplicate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	if !ParseBool(r.URL.Query(), "save") {
		writeJSON(w, http.StatusOK, dup)
		return
	}
	// A duplicate has no due date, which validation requires.
	if v := r.URL.Query().Get("dueDate"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			s.writeServiceError(w, r, err, log.OpCreate)
			return
		}
		dup.DueDate = d
	}
	saved, err := s.deps.Invoices.Save(r.Context(), dup)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	w.Header().Set("Location", "/api/invoices/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

type statusRequest struct {
	Status core.Status `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.deps.Invoices.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := s.deps.Invoices.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	var buf bytes.Buffer
	if err := s.deps.Exporter.Write(r.Context(), &buf, inv); err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(inv)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
