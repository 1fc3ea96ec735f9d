package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/tests/testutil"
)

func TestMonthlyFeeRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	svc := newServices(testDB.Pool, 1)
	liveOn := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	short := testDB.CreateTestMerchant(ctx, "below_minimum", domain.FrequencyDaily, liveOn, 500)
	covered := testDB.CreateTestMerchant(ctx, "above_minimum", domain.FrequencyDaily, liveOn, 100)
	idle := testDB.CreateTestMerchant(ctx, "no_orders", domain.FrequencyDaily, liveOn, 1500)
	testDB.CreateTestMerchant(ctx, "no_minimum", domain.FrequencyDaily, liveOn, 0)
	testDB.CreateTestMerchant(ctx, "live_in_march", domain.FrequencyDaily, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), 5000)

	testDB.CreateTestOrder(ctx, short, 20000, time.Date(2023, 2, 10, 9, 0, 0, 0, time.UTC))   // fee 190
	testDB.CreateTestOrder(ctx, covered, 20000, time.Date(2023, 2, 10, 9, 0, 0, 0, time.UTC)) // fee 190

	_, err := svc.disbursements.RunHistorical(ctx, time.Date(2023, 2, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	result, err := svc.monthlyFees.ProcessMonth(ctx, 2, 2023)
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	require.Len(t, result.Created, 2)
	assert.Equal(t, 3, result.Skipped)

	amounts := make(map[string]int64)
	for _, a := range result.Created {
		amounts[a.MerchantID] = a.AmountCents
		assert.Equal(t, 2, a.Month)
		assert.Equal(t, 2023, a.Year)
	}
	assert.Equal(t, map[string]int64{short.ID: 310, idle.ID: 1500}, amounts)

	exists, err := svc.adjustments.Exists(ctx, short.ID, 2, 2023)
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-running the month never charges twice.
	again, err := svc.monthlyFees.ProcessMonth(ctx, 2, 2023)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Equal(t, 2, testDB.CountRows(ctx, "monthly_fee_adjustments"))

	count, total, err := svc.adjustments.YearlyTotals(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(1810), total)
}
