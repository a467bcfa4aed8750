package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"invoicer/internal/backup"
	"invoicer/internal/log"
)

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Backup.Export(r.Context())
	b, err := snap.Marshal()
	if err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.FileName(snap.ExportDate)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// handleImportBackup replaces all data with the posted snapshot. Without
// confirm=true nothing is written and the response is 409 with a summary of
// what the import would replace everything with.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "backup too large")
		return
	}

	confirmed := ParseBool(r.URL.Query(), "confirm")
	confirm := backup.ConfirmFunc(func(context.Context, backup.Summary) (bool, error) {
		return confirmed, nil
	})

	sum, err := s.deps.Backup.Import(r.Context(), doc, confirm)
	if errors.Is(err, backup.ErrImportDeclined) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   "import replaces all existing data; repeat with confirm=true",
			Summary: &sum,
		})
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err, log.OpImport)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBackupSchema(w http.ResponseWriter, r *http.Request) {
	b, err := backup.Schema()
	if err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
