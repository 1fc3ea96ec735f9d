package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/usecase"
)

// DisbursementResponse represents a disbursement in API responses.
type DisbursementResponse struct {
	ID          string          `json:"id"`
	MerchantID  string          `json:"merchant_id"`
	Amount      decimal.Decimal `json:"amount"`
	Fees        decimal.Decimal `json:"fees"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Currency    string          `json:"currency"`
	OrderIDs    []string        `json:"order_ids"`
	DisbursedAt time.Time       `json:"disbursed_at"`
}

// DisbursementFromDomain converts a domain disbursement to response.
func DisbursementFromDomain(d *domain.Disbursement) *DisbursementResponse {
	return &DisbursementResponse{
		ID:          d.ID,
		MerchantID:  d.MerchantID,
		Amount:      domain.CentsToDecimal(d.AmountCents),
		Fees:        domain.CentsToDecimal(d.FeesAmountCents),
		NetAmount:   domain.CentsToDecimal(d.NetAmountCents()),
		Currency:    domain.Currency,
		OrderIDs:    d.OrderIDs(),
		DisbursedAt: d.DisbursedAt,
	}
}

// MerchantFailureResponse describes a merchant skipped by a batch.
type MerchantFailureResponse struct {
	MerchantID string `json:"merchant_id"`
	Reference  string `json:"reference,omitempty"`
	Error      string `json:"error"`
}

func failuresFromUseCase(failed []usecase.MerchantFailure) []MerchantFailureResponse {
	result := make([]MerchantFailureResponse, len(failed))
	for i, f := range failed {
		result[i] = MerchantFailureResponse{
			MerchantID: f.MerchantID,
			Reference:  f.Reference,
			Error:      f.Err.Error(),
		}
	}
	return result
}

// BatchResultResponse represents a disbursement run.
type BatchResultResponse struct {
	ReferenceDate string                    `json:"reference_date"`
	Successful    []*DisbursementResponse   `json:"successful"`
	Failed        []MerchantFailureResponse `json:"failed"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	TotalFees     decimal.Decimal           `json:"total_fees"`
}

// BatchResultFromUseCase converts a batch result to response.
func BatchResultFromUseCase(r *usecase.BatchResult) *BatchResultResponse {
	resp := &BatchResultResponse{
		ReferenceDate: r.ReferenceDate.Format(DateLayout),
		Successful:    make([]*DisbursementResponse, len(r.Successful)),
		Failed:        failuresFromUseCase(r.Failed),
	}

	var amount, fees int64
	for i, d := range r.Successful {
		resp.Successful[i] = DisbursementFromDomain(d)
		amount += d.AmountCents
		fees += d.FeesAmountCents
	}
	resp.TotalAmount = domain.CentsToDecimal(amount)
	resp.TotalFees = domain.CentsToDecimal(fees)

	return resp
}

// AdjustmentResponse represents a monthly fee adjustment.
type AdjustmentResponse struct {
	ID         string          `json:"id"`
	MerchantID string          `json:"merchant_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
}

// AdjustmentFromDomain converts a domain adjustment to response.
func AdjustmentFromDomain(a *domain.MonthlyFeeAdjustment) *AdjustmentResponse {
	return &AdjustmentResponse{
		ID:         a.ID,
		MerchantID: a.MerchantID,
		Amount:     domain.CentsToDecimal(a.AmountCents),
		Currency:   domain.Currency,
		Month:      a.Month,
		Year:       a.Year,
	}
}

// MonthlyFeeResultResponse represents a monthly fee run.
type MonthlyFeeResultResponse struct {
	Month   int                       `json:"month"`
	Year    int                       `json:"year"`
	Created []*AdjustmentResponse     `json:"created"`
	Skipped int                       `json:"skipped"`
	Failed  []MerchantFailureResponse `json:"failed"`
}

// MonthlyFeeResultFromUseCase converts a monthly fee result to response.
func MonthlyFeeResultFromUseCase(r *usecase.MonthlyFeeResult) *MonthlyFeeResultResponse {
	resp := &MonthlyFeeResultResponse{
		Month:   r.Month,
		Year:    r.Year,
		Created: make([]*AdjustmentResponse, len(r.Created)),
		Skipped: r.Skipped,
		Failed:  failuresFromUseCase(r.Failed),
	}
	for i, a := range r.Created {
		resp.Created[i] = AdjustmentFromDomain(a)
	}
	return resp
}

// MerchantResponse represents a merchant in API responses.
type MerchantResponse struct {
	ID                    string          `json:"id"`
	Reference             string          `json:"reference"`
	Email                 string          `json:"email"`
	DisbursementFrequency string          `json:"disbursement_frequency"`
	LiveOn                string          `json:"live_on"`
	MinimumMonthlyFee     decimal.Decimal `json:"minimum_monthly_fee"`
}

// MerchantFromDomain converts a domain merchant to response.
func MerchantFromDomain(m *domain.Merchant) *MerchantResponse {
	return &MerchantResponse{
		ID:                    m.ID,
		Reference:             m.Reference,
		Email:                 m.Email,
		DisbursementFrequency: string(m.Frequency),
		LiveOn:                m.LiveOn.Format(DateLayout),
		MinimumMonthlyFee:     domain.CentsToDecimal(m.MinimumMonthlyFeeCents),
	}
}

// YearlyStatsResponse represents one row of the yearly statistics.
type YearlyStatsResponse struct {
	Year              int             `json:"year"`
	DisbursementCount int64           `json:"disbursement_count"`
	DisbursedAmount   decimal.Decimal `json:"disbursed_amount"`
	OrderFees         decimal.Decimal `json:"order_fees"`
	MonthlyFeeCount   int64           `json:"monthly_fee_count"`
	MonthlyFeeAmount  decimal.Decimal `json:"monthly_fee_amount"`
}

// YearlyStatsFromDomain converts yearly stats to responses.
func YearlyStatsFromDomain(stats []domain.YearlyStats) []*YearlyStatsResponse {
	result := make([]*YearlyStatsResponse, len(stats))
	for i, s := range stats {
		result[i] = &YearlyStatsResponse{
			Year:              s.Year,
			DisbursementCount: s.DisbursementCount,
			DisbursedAmount:   domain.CentsToDecimal(s.DisbursedAmountCents),
			OrderFees:         domain.CentsToDecimal(s.OrderFeesCents),
			MonthlyFeeCount:   s.MonthlyFeeCount,
			MonthlyFeeAmount:  domain.CentsToDecimal(s.MonthlyFeeAmountCents),
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
