package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/gopayout/internal/adapter/http/dto"
	"github.com/iho/gopayout/internal/usecase"
)

// MonthlyFeeService runs the monthly minimum fee check.
type MonthlyFeeService interface {
	ProcessMonth(ctx context.Context, month, year int) (*usecase.MonthlyFeeResult, error)
	ProcessPreviousMonth(ctx context.Context, now time.Time) (*usecase.MonthlyFeeResult, error)
}

// MonthlyFeeHandler handles monthly fee HTTP requests.
type MonthlyFeeHandler struct {
	service MonthlyFeeService
	jobs    JobRunner
	now     func() time.Time
}

// NewMonthlyFeeHandler creates a new MonthlyFeeHandler.
func NewMonthlyFeeHandler(service MonthlyFeeService, jobs JobRunner) *MonthlyFeeHandler {
	return &MonthlyFeeHandler{service: service, jobs: jobs, now: time.Now}
}

// Run charges the monthly minimum fee shortfall for a month.
func (h *MonthlyFeeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunMonthlyFeesRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	var result *usecase.MonthlyFeeResult
	err := h.jobs.Run(r.Context(), usecase.JobMonthlyFees, func(ctx context.Context) error {
		var runErr error
		if req.Previous() {
			result, runErr = h.service.ProcessPreviousMonth(ctx, h.now())
		} else {
			result, runErr = h.service.ProcessMonth(ctx, req.Month, req.Year)
		}
		return runErr
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run monthly fees", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlyFeeResultFromUseCase(result))
}
