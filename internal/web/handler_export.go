package web

import (
	"net/http"
)

func (s *Server) handleExportRollsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rolls.csv"`)
	if err := s.exports.RollsCSV(r.Context(), currentUser(r).ID, w); err != nil {
		s.logger.Error("rolls csv export failed", "error", err)
	}
}

func (s *Server) handleExportRollsJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rolls.json"`)
	if err := s.exports.RollsJSON(r.Context(), currentUser(r).ID, w); err != nil {
		s.logger.Error("rolls json export failed", "error", err)
	}
}

func (s *Server) handleExportFramesCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="frames.csv"`)
	if err := s.exports.FramesCSV(r.Context(), currentUser(r).ID, w); err != nil {
		s.logger.Error("frames csv export failed", "error", err)
	}
}

func (s *Server) handleExportFramesJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="frames.json"`)
	if err := s.exports.FramesJSON(r.Context(), currentUser(r).ID, w); err != nil {
		s.logger.Error("frames json export failed", "error", err)
	}
}
