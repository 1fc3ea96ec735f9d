package integration

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/gopayout/internal/adapter/repository/postgres"
	"github.com/iho/gopayout/internal/usecase"
)

// monday is the reference date used across the suite.
var monday = time.Date(2023, 2, 6, 5, 0, 0, 0, time.UTC)

type services struct {
	disbursements *usecase.DisbursementUseCase
	monthlyFees   *usecase.MonthlyFeeUseCase
	disbursedRepo *postgres.DisbursementRepository
	adjustments   *postgres.FeeAdjustmentRepository
	outbox        *postgres.OutboxRepository
}

func newServices(pool *pgxpool.Pool, workers int) *services {
	txManager := postgres.NewTxManager(pool)
	merchantRepo := postgres.NewMerchantRepository(pool)
	disbursementRepo := postgres.NewDisbursementRepository(pool)
	adjustmentRepo := postgres.NewFeeAdjustmentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(zerolog.Nop())

	return &services{
		disbursements: usecase.NewDisbursementUseCase(usecase.DisbursementConfig{
			TxManager:     txManager,
			Merchants:     merchantRepo,
			Orders:        postgres.NewOrderRepository(),
			Disbursements: disbursementRepo,
			Outbox:        outboxRepo,
			IDGen:         idGen,
			Retrier:       retrier,
			Logger:        zerolog.Nop(),
			BatchSize:     2,
			Workers:       workers,
			TxTimeout:     10 * time.Second,
		}),
		monthlyFees: usecase.NewMonthlyFeeUseCase(usecase.MonthlyFeeConfig{
			TxManager:     txManager,
			Merchants:     merchantRepo,
			Disbursements: disbursementRepo,
			Adjustments:   adjustmentRepo,
			Outbox:        outboxRepo,
			IDGen:         idGen,
			Retrier:       retrier,
			Logger:        zerolog.Nop(),
			BatchSize:     2,
		}),
		disbursedRepo: disbursementRepo,
		adjustments:   adjustmentRepo,
		outbox:        outboxRepo,
	}
}
