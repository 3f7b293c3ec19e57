package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"viaggio/internal/ai"
	"viaggio/internal/core"
)

// AIUnavailableMessage is returned with a 502 when any provider call fails.
const AIUnavailableMessage = "AI service unavailable — try again later"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto status codes: validation 422, not
// found 404, provider failures 502, everything else an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var providerErr *ai.ProviderError
	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.As(err, &providerErr):
		slog.ErrorContext(r.Context(), "AI provider failure",
			"op", providerErr.Op, "status", providerErr.StatusCode, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: AIUnavailableMessage})
	default:
		slog.ErrorContext(r.Context(), "internal error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// HeaderUserResolver reads the user from X-User-ID, falling back to user 1
// for single-user deployments without a fronting proxy.
func HeaderUserResolver(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if raw == "" {
		return 1, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid X-User-ID header")
	}
	return id, nil
}

// userID resolves the requesting user or writes a 401 and returns false.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := s.resolveUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return 0, false
	}
	return id, true
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
