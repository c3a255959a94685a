package web

import (
	"net/http"
	"strings"

	"github.com/sloanb/pjourney/internal/domain"
)

func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	cameras, err := s.cameras.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cameras)
}

func (s *Server) handleCreateCamera(w http.ResponseWriter, r *http.Request) {
	var camera domain.Camera
	if err := decodeJSON(r, &camera); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(camera.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "camera name required")
		return
	}
	camera.UserID = currentUser(r).ID

	created, err := s.cameras.Create(r.Context(), &camera)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid camera id")
		return
	}

	camera, err := s.cameras.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if camera == nil {
		writeErrorStatus(w, http.StatusNotFound, "camera not found")
		return
	}
	writeJSON(w, http.StatusOK, camera)
}

func (s *Server) handleUpdateCamera(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid camera id")
		return
	}

	var camera domain.Camera
	if err := decodeJSON(r, &camera); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(camera.Name) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "camera name required")
		return
	}
	camera.ID = id
	camera.UserID = currentUser(r).ID

	updated, err := s.cameras.Update(r.Context(), &camera)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCamera(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid camera id")
		return
	}

	if err := s.cameras.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownCamera loads the camera and confirms it belongs to the requesting
// user. Issue routes hang off the camera path, so every issue operation
// passes through here.
func (s *Server) ownCamera(w http.ResponseWriter, r *http.Request) (*domain.Camera, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid camera id")
		return nil, false
	}
	camera, err := s.cameras.GetByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if camera == nil {
		writeErrorStatus(w, http.StatusNotFound, "camera not found")
		return nil, false
	}
	return camera, true
}

func (s *Server) handleListCameraIssues(w http.ResponseWriter, r *http.Request) {
	camera, ok := s.ownCamera(w, r)
	if !ok {
		return
	}
	issues, err := s.cameras.ListIssues(r.Context(), camera.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) handleCreateCameraIssue(w http.ResponseWriter, r *http.Request) {
	camera, ok := s.ownCamera(w, r)
	if !ok {
		return
	}

	var issue domain.CameraIssue
	if err := decodeJSON(r, &issue); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(issue.Description) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "issue description required")
		return
	}
	issue.CameraID = camera.ID

	created, err := s.cameras.CreateIssue(r.Context(), &issue)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCameraIssue(w http.ResponseWriter, r *http.Request) {
	camera, ok := s.ownCamera(w, r)
	if !ok {
		return
	}
	issueID, err := pathID(r, "issueID")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	existing, err := s.cameras.GetIssue(r.Context(), issueID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil || existing.CameraID != camera.ID {
		writeErrorStatus(w, http.StatusNotFound, "issue not found")
		return
	}

	var issue domain.CameraIssue
	if err := decodeJSON(r, &issue); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issue.ID = issueID
	issue.CameraID = camera.ID

	updated, err := s.cameras.UpdateIssue(r.Context(), &issue)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCameraIssue(w http.ResponseWriter, r *http.Request) {
	camera, ok := s.ownCamera(w, r)
	if !ok {
		return
	}
	issueID, err := pathID(r, "issueID")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	existing, err := s.cameras.GetIssue(r.Context(), issueID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil || existing.CameraID != camera.ID {
		writeErrorStatus(w, http.StatusNotFound, "issue not found")
		return
	}

	if err := s.cameras.DeleteIssue(r.Context(), issueID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
