package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"invoicer/internal/backup"
	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/pdf"
)

const (
	maxBodyBytes   = 1 << 20
	maxBackupBytes = 32 << 20
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	// Summary accompanies a declined backup import.
	Summary *backup.Summary `json:"summary,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := errorStatus(err)
	resp := errorResponse{Error: err.Error()}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		log.LogError(r.Context(), log.FromContext(r.Context()), "Request failed", err, op, nil)
		// Keep internal details in the log only.
		resp.Error = http.StatusText(status)
		if errors.Is(err, pdf.ErrExportFailed) {
			resp.Error = pdf.ErrExportFailed.Error()
		}
	}
	writeJSON(w, status, resp)
}

func errorStatus(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, core.ErrMissingCompany),
		errors.Is(err, core.ErrMissingClient),
		errors.Is(err, core.ErrMissingDueDate),
		errors.Is(err, core.ErrNoItems),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, backup.ErrInvalidBackup):
		return http.StatusBadRequest
	case errors.Is(err, backup.ErrImportDeclined):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON value from the body into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
