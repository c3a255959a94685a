package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sloanb/pjourney/internal/apperr"
	"github.com/sloanb/pjourney/internal/service"
	"github.com/sloanb/pjourney/internal/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: message}})
}

// writeError maps the sentinel and coded errors the lower layers return to
// HTTP statuses. Anything unrecognized is a 500 with the generic reference.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var detail errorDetail

	switch {
	case errors.Is(err, store.ErrNotFound):
		status, detail.Message = http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrForbidden):
		status, detail.Message = http.StatusForbidden, "forbidden"
	case errors.Is(err, store.ErrNoStock):
		status, detail.Message = http.StatusConflict, "no stock available"
	case errors.Is(err, store.ErrConflict):
		status, detail.Message = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrInvalidTransition):
		status, detail.Message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidBranch), errors.Is(err, service.ErrValidation):
		status, detail.Message = http.StatusBadRequest, err.Error()
	default:
		status = http.StatusInternalServerError
		code := apperr.CodeUnexpected
		var ae *apperr.Error
		if errors.As(err, &ae) {
			code = ae.Code
		}
		detail.Code = string(code)
		detail.Message = apperr.Message(code)
		s.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	}

	writeJSON(w, status, errorBody{Error: detail})
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID extracts a path variable and returns it as int64.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
