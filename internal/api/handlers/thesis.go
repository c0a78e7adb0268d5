package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/themescreen/internal/thesis"
	"github.com/wonny/themescreen/pkg/logger"
)

// ThesisGenerator produces a thesis for a ticker
type ThesisGenerator interface {
	Generate(ctx context.Context, ticker string) (*thesis.Result, error)
}

// ThesisHandler handles thesis generation requests
type ThesisHandler struct {
	service ThesisGenerator
	logger  *logger.Logger
}

// NewThesisHandler creates a new thesis handler
func NewThesisHandler(service ThesisGenerator, log *logger.Logger) *ThesisHandler {
	return &ThesisHandler{
		service: service,
		logger:  log,
	}
}

type thesisRequest struct {
	Ticker string `json:"ticker"`
}

// Generate writes a thesis onto the ticker's latest snapshot
// POST /api/thesis {"ticker": "NVDA"}
func (h *ThesisHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req thesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticker, ok := normalizeTicker(req.Ticker)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}

	result, err := h.service.Generate(r.Context(), ticker)
	switch {
	case err == nil:
	case errors.Is(err, thesis.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "Thesis generation is not configured")
		return
	default:
		h.logger.WithError(err).WithField("ticker", ticker).Error("Thesis generation failed")
		respondError(w, http.StatusBadGateway, "Thesis generation failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
