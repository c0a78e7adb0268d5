package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/external/tradingview"
	"github.com/wonny/themescreen/internal/pipeline"
	"github.com/wonny/themescreen/internal/themes"
	"github.com/wonny/themescreen/pkg/logger"
)

// ScreenRunner runs one theme screen
type ScreenRunner interface {
	Run(ctx context.Context, themeID string, source contracts.Source) (*pipeline.Result, error)
}

// ScreenHandler handles screen and theme endpoints
// ⭐ SSOT: 스크린 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	runner   ScreenRunner
	registry *themes.Registry
	logger   *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(runner ScreenRunner, registry *themes.Registry, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		runner:   runner,
		registry: registry,
		logger:   log,
	}
}

// Screen runs a theme screen on demand
// POST /api/screen?theme=ai-infrastructure
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	themeID := r.URL.Query().Get("theme")
	if themeID == "" {
		respondError(w, http.StatusBadRequest, "theme is required")
		return
	}

	result, err := h.runner.Run(r.Context(), themeID, contracts.SourceWeb)
	switch {
	case err == nil:
	case errors.Is(err, themes.ErrNotFound):
		respondError(w, http.StatusNotFound, "Unknown theme: "+themeID)
		return
	case errors.Is(err, tradingview.ErrUpstream):
		respondError(w, http.StatusBadGateway, err.Error())
		return
	default:
		h.logger.WithError(err).WithField("theme", themeID).Error("Screen request failed")
		respondError(w, http.StatusInternalServerError, "Screen failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ThemeSummary is the public view of a theme preset
type ThemeSummary struct {
	ID       string           `json:"id"`
	NameZh   string           `json:"name_zh"`
	NameEn   string           `json:"name_en"`
	Market   contracts.Market `json:"market"`
	Schedule string           `json:"schedule,omitempty"`
}

// ListThemes returns every theme preset
// GET /api/themes
func (h *ScreenHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	all := h.registry.All()
	out := make([]ThemeSummary, 0, len(all))
	for _, t := range all {
		out = append(out, ThemeSummary{
			ID:       t.ID,
			NameZh:   t.NameZh,
			NameEn:   t.NameEn,
			Market:   t.Market,
			Schedule: t.Schedule,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
