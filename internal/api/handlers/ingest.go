package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/signals"
	"github.com/wonny/themescreen/internal/themes"
	"github.com/wonny/themescreen/pkg/logger"
)

// RunPersister stores an already scored screen as one run
type RunPersister interface {
	Persist(ctx context.Context, themeID string, source contracts.Source, scored []contracts.ScoredCandidate) (uuid.UUID, int, error)
}

// IngestHandler scores or stores candidate lists produced outside the pipeline
type IngestHandler struct {
	registry  *themes.Registry
	persister RunPersister
	publisher contracts.EventPublisher
	logger    *logger.Logger
}

// NewIngestHandler creates an ingest handler. publisher may be nil.
func NewIngestHandler(registry *themes.Registry, persister RunPersister, publisher contracts.EventPublisher, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		registry:  registry,
		persister: persister,
		publisher: publisher,
		logger:    log,
	}
}

// AnalyzeRequest carries raw candidates to score
type AnalyzeRequest struct {
	Stocks []contracts.CandidateRecord `json:"stocks"`
}

// AnalyzeResponse holds the scored candidates
type AnalyzeResponse struct {
	Count  int                         `json:"count"`
	Stocks []contracts.ScoredCandidate `json:"stocks"`
}

// Analyze scores the posted candidates against each other without fetching or storing
// POST /api/analyze {"stocks": [...]}
func (h *IngestHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Stocks) == 0 {
		respondError(w, http.StatusBadRequest, "Request body must include a non-empty 'stocks' array")
		return
	}

	scored := signals.ScoreScreen(req.Stocks)
	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Count:  len(scored),
		Stocks: scored,
	})
}

// PushRequest carries a screen scored by an external client
type PushRequest struct {
	Theme  string                      `json:"theme"`
	Stocks []contracts.ScoredCandidate `json:"stocks"`
}

// PushResponse reports the stored run
type PushResponse struct {
	RunID   uuid.UUID `json:"run_id"`
	Count   int       `json:"count"`
	Message string    `json:"message"`
}

// Push stores pre-scored candidates as a cli run and announces it
// POST /api/push {"theme": "robotics", "stocks": [...]}
func (h *IngestHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Theme == "" || req.Stocks == nil {
		respondError(w, http.StatusBadRequest, "Body must include 'theme' (string) and 'stocks' (array)")
		return
	}

	theme, err := h.registry.Get(req.Theme)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Theme '%s' not found", req.Theme))
		return
	}

	runID, count, err := h.persister.Persist(r.Context(), theme.ID, contracts.SourceCLI, req.Stocks)
	if err != nil {
		h.logger.WithError(err).WithField("theme", theme.ID).Error("Push failed")
		respondError(w, http.StatusInternalServerError, "Push failed")
		return
	}

	if h.publisher != nil {
		h.publisher.Publish(contracts.EventScreenComplete, contracts.ScreenCompleteEvent{
			Theme:  theme.ID,
			RunID:  runID,
			Count:  count,
			Source: contracts.SourceCLI,
		})
	}

	respondJSON(w, http.StatusOK, PushResponse{
		RunID:   runID,
		Count:   count,
		Message: fmt.Sprintf("Persisted %d stocks from CLI push", count),
	})
}
