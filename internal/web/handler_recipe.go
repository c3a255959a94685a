package web

import (
	"net/http"
	"strings"

	"github.com/sloanb/pjourney/internal/domain"
)

type recipeRequest struct {
	Name        string                 `json:"name"`
	ProcessType string                 `json:"process_type"`
	Notes       string                 `json:"notes"`
	Steps       []domain.DevRecipeStep `json:"steps"`
}

type recipeResponse struct {
	Recipe *domain.DevRecipe       `json:"recipe"`
	Steps  []*domain.DevRecipeStep `json:"steps"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "recipe name required")
		return
	}

	recipe := &domain.DevRecipe{
		UserID:      currentUser(r).ID,
		Name:        req.Name,
		ProcessType: req.ProcessType,
		Notes:       req.Notes,
	}
	created, err := s.recipes.Create(r.Context(), recipe, req.Steps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	steps, err := s.recipes.ListSteps(r.Context(), created.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipeResponse{Recipe: created, Steps: steps})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	recipe, err := s.recipes.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recipe == nil {
		writeErrorStatus(w, http.StatusNotFound, "recipe not found")
		return
	}

	steps, err := s.recipes.ListSteps(r.Context(), recipe.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeResponse{Recipe: recipe, Steps: steps})
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "recipe name required")
		return
	}

	recipe := &domain.DevRecipe{
		ID:          id,
		UserID:      currentUser(r).ID,
		Name:        req.Name,
		ProcessType: req.ProcessType,
		Notes:       req.Notes,
	}
	updated, err := s.recipes.Update(r.Context(), recipe, req.Steps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	steps, err := s.recipes.ListSteps(r.Context(), updated.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeResponse{Recipe: updated, Steps: steps})
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := s.recipes.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
