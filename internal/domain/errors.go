package domain

import "errors"

var (
	// Merchant errors
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrUnknownFrequency = errors.New("unknown disbursement frequency")
	ErrInvalidFrequency = errors.New("invalid disbursement frequency")

	// Disbursement errors
	ErrValidation           = errors.New("disbursement validation failed")
	ErrDisbursementNotFound = errors.New("disbursement not found")

	// Order errors
	ErrOrderAlreadyDisbursed = errors.New("order already disbursed")

	// Monthly fee errors
	ErrInvalidMonth = errors.New("month must be between 1 and 12")

	// Reporting errors
	ErrInvalidYearRange = errors.New("invalid year range")
)
