package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/tackline/internal/adapters/repository"
	service "github.com/okian/tackline/internal/app"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/types"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	Submit(ctx context.Context, key string, samples []model.Sample) (string, bool, error)
	Session(ctx context.Context, id string) (model.Session, error)
	Sessions(ctx context.Context, limit int) ([]model.Session, error)
}

// SessionsHandler handles upload and session read requests.
type SessionsHandler struct {
	deps           SessionDependencies
	maxUploadBytes int64
	maxListLimit   int
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies, maxUploadBytes int64, maxListLimit int) *SessionsHandler {
	return &SessionsHandler{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
		maxListLimit:   maxListLimit,
	}
}

// HandleSubmit handles POST /sessions requests.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_session"
	up, status, err := readUpload(w, r, op, h.maxUploadBytes)
	if err != nil {
		writeError(w, status, codeFor(status), err)
		return
	}

	id, duplicate, err := h.deps.Submit(r.Context(), up.key(r), up.samples)
	switch {
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	case errors.Is(err, service.ErrEmptyLog):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	status = http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, types.SubmitResponse{ID: id, Status: model.StatusPending, Duplicate: duplicate})
}

// HandleList handles GET /sessions?limit=N requests.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sessions"
	n, ok := parseLimit(r, defaultListLimit, h.maxListLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	sessions, err := h.deps.Sessions(r.Context(), n)
	if err != nil {
		h.writeLookupError(w, op, err)
		return
	}
	out := make([]types.SessionSummary, len(sessions))
	for i, s := range sessions {
		out[i] = types.Summarize(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	sess, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleView handles GET /sessions/{id}/{tacks|maneuvers|legs} requests.
func (h *SessionsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session_view"
	view := r.PathValue("view")
	switch view {
	case "tacks", "maneuvers", "legs":
	default:
		http.NotFound(w, r)
		return
	}

	sess, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, op, err)
		return
	}
	switch sess.Status {
	case model.StatusPending:
		writeError(w, http.StatusConflict, "pending", NewKind(op, ErrPending))
		return
	case model.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "analysis_failed", Message: sess.Error})
		return
	}

	a := sess.Analysis
	if a == nil {
		a = &model.Analysis{}
	}
	switch view {
	case "tacks":
		writeJSON(w, http.StatusOK, nonNil(a.Tacks))
	case "maneuvers":
		writeJSON(w, http.StatusOK, nonNil(a.Maneuvers))
	case "legs":
		writeJSON(w, http.StatusOK, nonNil(a.Legs))
	}
}

func (h *SessionsHandler) writeLookupError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "internal_error"
	}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
