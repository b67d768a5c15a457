package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/tackline/internal/app"
	"github.com/okian/tackline/internal/domain/model"
)

// AnalyzeDependencies defines the interface for inline analysis.
type AnalyzeDependencies interface {
	Analyze(ctx context.Context, samples []model.Sample) (model.Analysis, error)
}

// AnalyzeHandler handles synchronous analysis requests.
type AnalyzeHandler struct {
	deps           AnalyzeDependencies
	maxUploadBytes int64
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies, maxUploadBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandleAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	up, status, err := readUpload(w, r, op, h.maxUploadBytes)
	if err != nil {
		writeError(w, status, codeFor(status), err)
		return
	}

	a, err := h.deps.Analyze(r.Context(), up.samples)
	switch {
	case errors.Is(err, service.ErrEmptyLog):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}
