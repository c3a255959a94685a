package web

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := s.lowStock
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorStatus(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = n
	}

	report, err := s.stats.LowStock(r.Context(), currentUser(r).ID, threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.Counts(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.stats.Usage(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (s *Server) handleLoadedCameras(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.stats.LoadedCameras(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}
