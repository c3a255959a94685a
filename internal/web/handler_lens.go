package web

import (
	"net/http"
	"strings"

	"github.com/sloanb/pjourney/internal/domain"
)

func (s *Server) handleListLenses(w http.ResponseWriter, r *http.Request) {
	lenses, err := s.lenses.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lenses)
}

func (s *Server) handleCreateLens(w http.ResponseWriter, r *http.Request) {
	var lens domain.Lens
	if err := decodeJSON(r, &lens); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(lens.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "lens name required")
		return
	}
	lens.UserID = currentUser(r).ID

	created, err := s.lenses.Create(r.Context(), &lens)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetLens(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid lens id")
		return
	}

	lens, err := s.lenses.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if lens == nil {
		writeErrorStatus(w, http.StatusNotFound, "lens not found")
		return
	}
	writeJSON(w, http.StatusOK, lens)
}

func (s *Server) handleUpdateLens(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid lens id")
		return
	}

	var lens domain.Lens
	if err := decodeJSON(r, &lens); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(lens.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "lens name required")
		return
	}
	lens.ID = id
	lens.UserID = currentUser(r).ID

	updated, err := s.lenses.Update(r.Context(), &lens)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLens(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid lens id")
		return
	}

	if err := s.lenses.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ownLens(w http.ResponseWriter, r *http.Request) (*domain.Lens, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid lens id")
		return nil, false
	}
	lens, err := s.lenses.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if lens == nil {
		writeErrorStatus(w, http.StatusNotFound, "lens not found")
		return nil, false
	}
	return lens, true
}

func (s *Server) handleListLensNotes(w http.ResponseWriter, r *http.Request) {
	lens, ok := s.ownLens(w, r)
	if !ok {
		return
	}
	notes, err := s.lenses.ListNotes(r.Context(), lens.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

type lensNoteRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateLensNote(w http.ResponseWriter, r *http.Request) {
	lens, ok := s.ownLens(w, r)
	if !ok {
		return
	}

	var req lensNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "note content required")
		return
	}

	note, err := s.lenses.CreateNote(r.Context(), lens.ID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateLensNote(w http.ResponseWriter, r *http.Request) {
	lens, ok := s.ownLens(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid note id")
		return
	}

	existing, err := s.lenses.GetNote(r.Context(), noteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil || existing.LensID != lens.ID {
		writeErrorStatus(w, http.StatusNotFound, "note not found")
		return
	}

	var req lensNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := s.lenses.UpdateNote(r.Context(), noteID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteLensNote(w http.ResponseWriter, r *http.Request) {
	lens, ok := s.ownLens(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid note id")
		return
	}

	existing, err := s.lenses.GetNote(r.Context(), noteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil || existing.LensID != lens.ID {
		writeErrorStatus(w, http.StatusNotFound, "note not found")
		return
	}

	if err := s.lenses.DeleteNote(r.Context(), noteID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
