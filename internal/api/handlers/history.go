package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/logger"
)

const (
	defaultHistoryLimit = 30
	defaultRunsLimit    = 50
	maxQueryLimit       = 500
)

// HistoryHandler serves stored snapshots and runs
type HistoryHandler struct {
	repo   contracts.SnapshotRepository
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(repo contracts.SnapshotRepository, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:   repo,
		logger: log,
	}
}

// History returns a ticker's snapshots, newest first
// GET /api/history/{ticker}?limit=30
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	ticker, ok := normalizeTicker(mux.Vars(r)["ticker"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}

	limit, ok := queryLimit(r, defaultHistoryLimit, maxQueryLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, err := h.repo.History(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	if entries == nil {
		entries = []contracts.HistoryEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(entries),
		"history": entries,
	})
}

// Runs returns the most recent screen runs
// GET /api/runs?limit=50
func (h *HistoryHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, defaultRunsLimit, maxQueryLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	runs, err := h.repo.LatestRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}
	if runs == nil {
		runs = []contracts.ScreenRun{}
	}

	respondJSON(w, http.StatusOK, runs)
}
