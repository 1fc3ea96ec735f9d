package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/gopayout/internal/adapter/http/dto"
	"github.com/iho/gopayout/internal/domain"
)

// StatsService reports yearly totals.
type StatsService interface {
	Yearly(ctx context.Context, from, to int) ([]domain.YearlyStats, error)
}

// StatsHandler handles reporting requests.
type StatsHandler struct {
	service StatsService
	now     func() time.Time
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service, now: time.Now}
}

// Yearly returns totals per year for ?from=YYYY&to=YYYY. Both default to
// the current year.
func (h *StatsHandler) Yearly(w http.ResponseWriter, r *http.Request) {
	current := h.now().UTC().Year()
	to := parseIntQuery(r, "to", current)
	from := parseIntQuery(r, "from", to)

	stats, err := h.service.Yearly(r.Context(), from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.YearlyStatsFromDomain(stats))
}
