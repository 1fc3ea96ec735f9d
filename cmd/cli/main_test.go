package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gopayout/internal/adapter/http/dto"
)

func runCLI(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--url", server.URL}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestStatsCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2022", r.URL.Query().Get("from"))
		assert.Equal(t, "2023", r.URL.Query().Get("to"))

		writeTestJSON(t, w, http.StatusOK, []dto.YearlyStatsResponse{
			{
				Year:              2022,
				DisbursementCount: 1547,
				DisbursedAmount:   decimal.RequireFromString("37628880.14"),
				OrderFees:         decimal.RequireFromString("339972.57"),
				MonthlyFeeCount:   22,
				MonthlyFeeAmount:  decimal.RequireFromString("370.7"),
			},
			{
				Year:              2023,
				DisbursementCount: 10,
				DisbursedAmount:   decimal.NewFromInt(10),
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCLI(t, server, "stats", "--from", "2022", "--to", "2023")
	require.NoError(t, err)

	want := "| Year | Number of disbursements | Amount disbursed to merchants | Amount of order fees | Number of monthly fees charged | Amount of monthly fee charged |\n" +
		"| --- | --- | --- | --- | --- | --- |\n" +
		"| 2022 | 1547 | 37628880.14 € | 339972.57 € | 22 | 370.70 € |\n" +
		"| 2023 | 10 | 10.00 € | 0.00 € | 0 | 0.00 € |\n"
	assert.Equal(t, want, out)
}

func TestStatsCommand_DefaultsToServerYear(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeTestJSON(t, w, http.StatusOK, []dto.YearlyStatsResponse{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCLI(t, server, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "| Year |")
}

func TestDisbursementsRunCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/disbursements/runs", func(w http.ResponseWriter, r *http.Request) {
		var req dto.RunDisbursementsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2023-02-06", req.Date)

		writeTestJSON(t, w, http.StatusOK, dto.BatchResultResponse{
			ReferenceDate: "2023-02-06",
			Successful:    []*dto.DisbursementResponse{{ID: "d1"}, {ID: "d2"}},
			Failed: []dto.MerchantFailureResponse{
				{MerchantID: "m3", Reference: "broken_shop", Error: "invalid disbursement frequency"},
			},
			TotalAmount: decimal.RequireFromString("510"),
			TotalFees:   decimal.RequireFromString("4.45"),
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCLI(t, server, "disbursements", "run", "--date", "2023-02-06")
	require.NoError(t, err)

	assert.Contains(t, out, "Reference date: 2023-02-06\n")
	assert.Contains(t, out, "Disbursements created: 2\n")
	assert.Contains(t, out, "Total amount: 510.00 €\n")
	assert.Contains(t, out, "Total fees: 4.45 €\n")
	assert.Contains(t, out, "Failed merchants: 1\n")
	assert.Contains(t, out, "m3 (broken_shop): invalid disbursement frequency")
}

func TestDisbursementsRunCommand_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/disbursements/runs", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusConflict, dto.ErrorResponse{
			Error:   "failed to run disbursements",
			Message: "job already running",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := runCLI(t, server, "disbursements", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
	assert.Contains(t, err.Error(), "job already running")
}

func TestDisbursementsBackfillCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/disbursements/backfill", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "disbursements", r.URL.Query().Get("scope"))
		writeTestJSON(t, w, http.StatusOK, map[string]any{
			"from":        "2022-09-01T00:00:00Z",
			"to":          "2022-09-03T00:00:00Z",
			"days":        3,
			"successful":  42,
			"failed":      1,
			"months":      0,
			"adjustments": 0,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCLI(t, server, "disbursements", "backfill", "--scope", "disbursements")
	require.NoError(t, err)

	assert.Contains(t, out, "Days processed: 3 (2022-09-01 to 2022-09-03)\n")
	assert.Contains(t, out, "Disbursements created: 42\n")
	assert.Contains(t, out, "Failed merchants: 1\n")
}

func TestMonthlyFeesRunCommand(t *testing.T) {
	var got dto.RunMonthlyFeesRequest

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/monthly-fees/runs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeTestJSON(t, w, http.StatusOK, dto.MonthlyFeeResultResponse{
			Month:   2,
			Year:    2023,
			Created: []*dto.AdjustmentResponse{{ID: "a1"}},
			Skipped: 4,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCLI(t, server, "monthly-fees", "run", "--month", "2", "--year", "2023")
	require.NoError(t, err)

	assert.Equal(t, dto.RunMonthlyFeesRequest{Month: 2, Year: 2023}, got)
	assert.Contains(t, out, "Period: 2023-02\n")
	assert.Contains(t, out, "Adjustments created: 1\n")
	assert.Contains(t, out, "Skipped merchants: 4\n")
}

func TestMonthlyFeesRunCommand_InvalidMonth(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := runCLI(t, server, "monthly-fees", "run", "--month", "13", "--year", "2023")
	require.Error(t, err)
}

func TestMonthlyFeesRunCommand_RequiresYearWithMonth(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := runCLI(t, server, "monthly-fees", "run", "--month", "2")
	require.Error(t, err)
}

func TestFormatEuros(t *testing.T) {
	assert.Equal(t, "10.00 €", formatEuros(decimal.NewFromInt(10).StringFixed(2)))
	assert.Equal(t, "0.05 €", formatEuros(decimal.RequireFromString("0.05").StringFixed(2)))
}

func TestMigrateCommand_MissingMigrationsDir(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://payout@127.0.0.1:1/payout?sslmode=disable")
	t.Setenv("MIGRATIONS_PATH", filepath.Join(t.TempDir(), "missing"))

	for _, direction := range []string{"up", "down"} {
		t.Run(direction, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd(&out)
			cmd.SetErr(io.Discard)
			cmd.SetArgs([]string{"migrate", direction})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "migrate instance")
		})
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := newRootCmd(io.Discard)

	for _, path := range [][]string{
		{"disbursements", "run"},
		{"disbursements", "backfill"},
		{"monthly-fees", "run"},
		{"stats"},
		{"migrate", "up"},
		{"migrate", "down"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
