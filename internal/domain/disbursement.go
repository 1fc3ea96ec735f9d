package domain

import (
	"fmt"
	"strings"
	"time"
)

// Disbursement is a single payout aggregating a merchant's orders for a window.
type Disbursement struct {
	DisbursedAt     time.Time
	CreatedAt       time.Time
	ID              string
	MerchantID      string
	Orders          []*Order
	AmountCents     int64
	FeesAmountCents int64
}

// NetAmountCents is what the merchant receives.
func (d *Disbursement) NetAmountCents() int64 {
	return d.AmountCents - d.FeesAmountCents
}

// OrderIDs returns the IDs of the disbursed orders.
func (d *Disbursement) OrderIDs() []string {
	ids := make([]string, len(d.Orders))
	for i, o := range d.Orders {
		ids[i] = o.ID
	}
	return ids
}

// DisbursementAttributes is the computed, not yet persisted, disbursement.
type DisbursementAttributes struct {
	DisbursedAt     time.Time
	MerchantID      string
	Orders          []*Order
	AmountCents     int64
	FeesAmountCents int64
}

// FieldError describes one violated attribute.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

// ValidationError carries every violation found in a set of attributes.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(msgs, ", "))
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks the attributes before they are persisted.
func (a *DisbursementAttributes) Validate() error {
	var fields []FieldError

	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(a.MerchantID) == "" {
		add("merchant_id", "can't be blank")
	}
	if a.AmountCents < 0 {
		add("amount_cents", "must be greater than or equal to 0")
	}
	if a.FeesAmountCents < 0 {
		add("fees_amount_cents", "must be greater than or equal to 0")
	}
	if a.FeesAmountCents > a.AmountCents {
		add("fees_amount_cents", "cannot be greater than total amount")
	}
	if len(a.Orders) == 0 {
		add("orders", "can't be blank")
	} else if SumAmounts(a.Orders) != a.AmountCents {
		add("amount_cents", "must match the sum of order amounts")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
