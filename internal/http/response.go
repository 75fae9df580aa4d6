package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error     string  `json:"error"`
	Kind      string  `json:"kind"`
	RecordIDs []int64 `json:"recordIds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error classes onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, core.ErrIntegrityAmbiguity):
		return http.StatusConflict, "ambiguity"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrTransport):
		return http.StatusBadGateway, "transport"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, kind := statusFor(err)
	body := errorResponse{Error: err.Error(), Kind: kind}

	var amb *core.IntegrityAmbiguityError
	if errors.As(err, &amb) {
		body.RecordIDs = amb.RecordIDs
	}
	if status >= 500 {
		body.Error = http.StatusText(status)
		if status == http.StatusBadGateway {
			body.Error = err.Error()
		}
		log.LogError(r.Context(), log.FromContext(r.Context()), "Request failed", err, op, nil)
	}
	writeJSON(w, status, body)
}
