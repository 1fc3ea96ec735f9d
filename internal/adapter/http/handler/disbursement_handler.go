package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gopayout/internal/adapter/http/dto"
	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/usecase"
)

// DisbursementService runs the disbursement batch.
type DisbursementService interface {
	Run(ctx context.Context, reference time.Time) (*usecase.BatchResult, error)
	RunHistorical(ctx context.Context, reference time.Time) (*usecase.BatchResult, error)
}

// BackfillService replays the batch jobs over historical data.
type BackfillService interface {
	Disbursements(ctx context.Context) (*usecase.BackfillResult, error)
	MonthlyFees(ctx context.Context) (*usecase.BackfillResult, error)
	All(ctx context.Context) (*usecase.BackfillResult, error)
}

// DisbursementReader loads stored disbursements.
type DisbursementReader interface {
	GetByID(ctx context.Context, id string) (*domain.Disbursement, error)
}

// JobRunner guards a batch job against concurrent runs.
type JobRunner interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// DisbursementHandler handles disbursement-related HTTP requests.
type DisbursementHandler struct {
	service  DisbursementService
	backfill BackfillService
	reader   DisbursementReader
	jobs     JobRunner
	now      func() time.Time
}

// NewDisbursementHandler creates a new DisbursementHandler.
func NewDisbursementHandler(service DisbursementService, backfill BackfillService, reader DisbursementReader, jobs JobRunner) *DisbursementHandler {
	return &DisbursementHandler{
		service:  service,
		backfill: backfill,
		reader:   reader,
		jobs:     jobs,
		now:      time.Now,
	}
}

// Run runs the disbursement batch for today, or for the requested date.
// A past date is replayed with disbursements stamped at that day.
func (h *DisbursementHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunDisbursementsRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, historical, err := req.ReferenceDate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	var result *usecase.BatchResult
	err = h.jobs.Run(r.Context(), usecase.JobDisbursements, func(ctx context.Context) error {
		var runErr error
		if historical {
			result, runErr = h.service.RunHistorical(ctx, date)
		} else {
			result, runErr = h.service.Run(ctx, h.now())
		}
		return runErr
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run disbursements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchResultFromUseCase(result))
}

// Backfill replays historical days. The scope query parameter selects
// disbursements, monthly_fees or all (default).
func (h *DisbursementHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var run func(ctx context.Context) (*usecase.BackfillResult, error)

	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "all":
		run = h.backfill.All
	case "disbursements":
		run = h.backfill.Disbursements
	case "monthly_fees":
		run = h.backfill.MonthlyFees
	default:
		writeError(w, http.StatusBadRequest, "invalid scope", scope)
		return
	}

	var result *usecase.BackfillResult
	err := h.jobs.Run(r.Context(), usecase.JobDisbursements, func(ctx context.Context) error {
		var runErr error
		result, runErr = run(ctx)
		return runErr
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to backfill", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get retrieves a disbursement by ID.
func (h *DisbursementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing disbursement ID", "")
		return
	}

	disbursement, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get disbursement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DisbursementFromDomain(disbursement))
}
