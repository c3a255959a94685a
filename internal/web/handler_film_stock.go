package web

import (
	"net/http"
	"strings"

	"github.com/sloanb/pjourney/internal/domain"
)

func (s *Server) handleListFilmStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.stocks.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stocks)
}

func (s *Server) handleCreateFilmStock(w http.ResponseWriter, r *http.Request) {
	var stock domain.FilmStock
	if err := decodeJSON(r, &stock); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(stock.Brand) == "" || strings.TrimSpace(stock.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "brand and name required")
		return
	}
	if stock.MediaType == "" {
		stock.MediaType = domain.MediaTypeAnalog
	}
	stock.UserID = currentUser(r).ID

	created, err := s.stocks.Create(r.Context(), &stock)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFilmStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid film stock id")
		return
	}

	stock, err := s.stocks.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stock == nil {
		writeErrorStatus(w, http.StatusNotFound, "film stock not found")
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (s *Server) handleUpdateFilmStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid film stock id")
		return
	}

	var stock domain.FilmStock
	if err := decodeJSON(r, &stock); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(stock.Brand) == "" || strings.TrimSpace(stock.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "brand and name required")
		return
	}
	stock.ID = id
	stock.UserID = currentUser(r).ID

	updated, err := s.stocks.Update(r.Context(), &stock)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteFilmStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid film stock id")
		return
	}

	if err := s.stocks.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
