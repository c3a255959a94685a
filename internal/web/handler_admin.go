package web

import (
	"net/http"
	"strings"

	"github.com/sloanb/pjourney/internal/apperr"
	"github.com/sloanb/pjourney/internal/domain"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeErrorStatus(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == currentUser(r).ID {
		writeErrorStatus(w, http.StatusConflict, "cannot delete the authenticated user")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCloudSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.cloud.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if settings == nil {
		writeErrorStatus(w, http.StatusNotFound, "no cloud settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveCloudSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.CloudSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	settings.UserID = currentUser(r).ID

	saved, err := s.cloud.Save(r.Context(), &settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCloudSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.cloud.Delete(r.Context(), currentUser(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVacuum(w http.ResponseWriter, r *http.Request) {
	if err := s.maint(r.Context()); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.CodeDBVacuum, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	info, err := s.backups.BackupLocal(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.ListLocalBackups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	info, err := s.backups.SyncToCloud(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListCloudBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.ListCloudBackups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

type restoreRequest struct {
	Key string `json:"key"`
}

// handleRestore swaps the database file on disk. The process must be
// restarted afterward so every connection reopens against the restored file.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeJSON(r, &req); err != nil || req.Key == "" {
		writeErrorStatus(w, http.StatusBadRequest, "backup key required")
		return
	}

	if err := s.backups.RestoreFromCloud(r.Context(), req.Key); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "restored",
		"note":   "restart the service to reopen the database",
	})
}
