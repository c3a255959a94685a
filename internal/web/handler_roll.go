package web

import (
	"net/http"
	"slices"
	"time"

	"github.com/sloanb/pjourney/internal/domain"
	"github.com/sloanb/pjourney/internal/service"
)

func (s *Server) handleListRolls(w http.ResponseWriter, r *http.Request) {
	var status *domain.RollStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := domain.RollStatus(raw)
		if !slices.Contains(domain.RollStatuses, st) {
			writeErrorStatus(w, http.StatusBadRequest, "unknown roll status")
			return
		}
		status = &st
	}

	rolls, err := s.rolls.ListRolls(r.Context(), currentUser(r).ID, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rolls)
}

type createRollRequest struct {
	FilmStockID   int64   `json:"film_stock_id"`
	Notes         string  `json:"notes"`
	Title         string  `json:"title"`
	PushPullStops float64 `json:"push_pull_stops"`
	Location      string  `json:"location"`
}

func (s *Server) handleCreateRoll(w http.ResponseWriter, r *http.Request) {
	var req createRollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FilmStockID == 0 {
		writeErrorStatus(w, http.StatusBadRequest, "film_stock_id required")
		return
	}

	roll, err := s.rolls.CreateRoll(r.Context(), currentUser(r).ID, service.CreateRollInput{
		FilmStockID:   req.FilmStockID,
		Notes:         req.Notes,
		Title:         req.Title,
		PushPullStops: req.PushPullStops,
		Location:      req.Location,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, roll)
}

func (s *Server) handleGetRoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return
	}

	roll, err := s.rolls.GetRoll(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if roll == nil {
		writeErrorStatus(w, http.StatusNotFound, "roll not found")
		return
	}
	writeJSON(w, http.StatusOK, roll)
}

type rollDetailsRequest struct {
	Notes         string     `json:"notes"`
	Title         string     `json:"title"`
	PushPullStops float64    `json:"push_pull_stops"`
	ScanDate      *time.Time `json:"scan_date"`
	ScanNotes     string     `json:"scan_notes"`
	Location      string     `json:"location"`
}

func (s *Server) handleUpdateRollDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return
	}

	var req rollDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	roll := &domain.Roll{
		ID:            id,
		UserID:        currentUser(r).ID,
		Notes:         req.Notes,
		Title:         req.Title,
		PushPullStops: req.PushPullStops,
		ScanDate:      req.ScanDate,
		ScanNotes:     req.ScanNotes,
		Location:      req.Location,
	}

	updated, err := s.rolls.UpdateRollDetails(r.Context(), roll)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return
	}

	if err := s.rolls.DeleteRoll(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loadRollRequest struct {
	CameraID      int64  `json:"camera_id"`
	DefaultLensID *int64 `json:"default_lens_id"`
}

func (s *Server) handleLoadRoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return
	}

	var req loadRollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CameraID == 0 {
		writeErrorStatus(w, http.StatusBadRequest, "camera_id required")
		return
	}

	roll, err := s.rolls.Load(r.Context(), currentUser(r).ID, id, req.CameraID, req.DefaultLensID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roll)
}

type advanceRollRequest struct {
	Branch      string                   `json:"branch,omitempty"`
	LabName     string                   `json:"lab_name,omitempty"`
	LabContact  string                   `json:"lab_contact,omitempty"`
	CostAmount  *float64                 `json:"cost_amount,omitempty"`
	ProcessType string                   `json:"process_type,omitempty"`
	RecipeID    *int64                   `json:"recipe_id,omitempty"`
	Steps       []domain.DevelopmentStep `json:"steps,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
}

func (s *Server) handleAdvanceRoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return
	}

	var opts *service.AdvanceOptions
	if r.ContentLength > 0 {
		var req advanceRollRequest
		if err := decodeJSON(r, &req); err != nil {
			writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
		opts = &service.AdvanceOptions{
			Branch:      domain.DevBranch(req.Branch),
			LabName:     req.LabName,
			LabContact:  req.LabContact,
			CostAmount:  req.CostAmount,
			ProcessType: req.ProcessType,
			RecipeID:    req.RecipeID,
			Steps:       req.Steps,
			Notes:       req.Notes,
		}
	}

	roll, err := s.rolls.Advance(r.Context(), currentUser(r).ID, id, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roll)
}

func (s *Server) ownRoll(w http.ResponseWriter, r *http.Request) (*domain.Roll, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid roll id")
		return nil, false
	}
	roll, err := s.rolls.GetRoll(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if roll == nil {
		writeErrorStatus(w, http.StatusNotFound, "roll not found")
		return nil, false
	}
	return roll, true
}

func (s *Server) handleListFrames(w http.ResponseWriter, r *http.Request) {
	roll, ok := s.ownRoll(w, r)
	if !ok {
		return
	}
	frames, err := s.frames.ListByRollID(r.Context(), roll.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frames)
}

type developmentResponse struct {
	Development *domain.RollDevelopment   `json:"development"`
	Steps       []*domain.DevelopmentStep `json:"steps"`
}

func (s *Server) handleGetDevelopment(w http.ResponseWriter, r *http.Request) {
	roll, ok := s.ownRoll(w, r)
	if !ok {
		return
	}

	dev, err := s.devs.GetByRollID(r.Context(), roll.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if dev == nil {
		writeErrorStatus(w, http.StatusNotFound, "roll has no development record")
		return
	}

	steps, err := s.devs.ListSteps(r.Context(), dev.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, developmentResponse{Development: dev, Steps: steps})
}

func (s *Server) handleUpdateFrame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid frame id")
		return
	}

	existing, err := s.frames.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil {
		writeErrorStatus(w, http.StatusNotFound, "frame not found")
		return
	}
	roll, err := s.rolls.GetRoll(r.Context(), currentUser(r).ID, existing.RollID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if roll == nil {
		writeErrorStatus(w, http.StatusNotFound, "frame not found")
		return
	}

	var frame domain.Frame
	if err := decodeJSON(r, &frame); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if frame.Rating != nil && (*frame.Rating < 1 || *frame.Rating > 5) {
		writeErrorStatus(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	frame.ID = id
	frame.RollID = existing.RollID
	frame.FrameNumber = existing.FrameNumber

	updated, err := s.frames.Update(r.Context(), &frame)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
