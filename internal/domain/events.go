package domain

import (
	"fmt"
	"time"
)

// Event types
const (
	EventTypeDisbursementCreated = "disbursement.created"
	EventTypeMonthlyFeeAdjusted  = "monthly_fee.adjusted"
)

// Aggregate types
const (
	AggregateTypeDisbursement = "disbursement"
	AggregateTypeMonthlyFee   = "monthly_fee_adjustment"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewDisbursementCreatedEvent builds the outbox event for a new disbursement.
func NewDisbursementCreatedEvent(id string, d *Disbursement, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   d.ID,
		AggregateType: AggregateTypeDisbursement,
		EventType:     EventTypeDisbursementCreated,
		Payload: map[string]any{
			"disbursement_id": d.ID,
			"merchant_id":     d.MerchantID,
			"amount":          CentsToDecimal(d.AmountCents).StringFixed(2),
			"fees":            CentsToDecimal(d.FeesAmountCents).StringFixed(2),
			"currency":        Currency,
			"order_ids":       d.OrderIDs(),
			"disbursed_at":    d.DisbursedAt.UTC().Format(time.RFC3339),
		},
		CreatedAt: now,
	}
}

// NewMonthlyFeeAdjustedEvent builds the outbox event for a new adjustment.
func NewMonthlyFeeAdjustedEvent(id string, a *MonthlyFeeAdjustment, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeMonthlyFee,
		EventType:     EventTypeMonthlyFeeAdjusted,
		Payload: map[string]any{
			"adjustment_id": a.ID,
			"merchant_id":   a.MerchantID,
			"amount":        CentsToDecimal(a.AmountCents).StringFixed(2),
			"currency":      Currency,
			"period":        fmt.Sprintf("%04d-%02d", a.Year, a.Month),
		},
		CreatedAt: now,
	}
}
