package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"invoicer/internal/core"
	"invoicer/internal/log"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Contacts.List(r.Context()))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Contacts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c core.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = ""
	saved, err := s.deps.Contacts.Save(r.Context(), c)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	w.Header().Set("Location", "/api/contacts/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.deps.Contacts.Get(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	var c core.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = id
	saved, err := s.deps.Contacts.Save(r.Context(), c)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Contacts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Company.Get(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveCompany(w http.ResponseWriter, r *http.Request) {
	var p core.CompanyProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.deps.Company.Save(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
