package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/gopayout/internal/adapter/http/dto"
	"github.com/iho/gopayout/internal/infrastructure/config"
	"github.com/iho/gopayout/internal/infrastructure/logger"
	"github.com/iho/gopayout/internal/infrastructure/postgres"
	"github.com/iho/gopayout/internal/usecase"
)

const currencySymbol = "€"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliOptions struct {
	baseURL string
	timeout time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "gopayout-cli",
		Short:         "GoPayout CLI tool",
		Long:          `A command line interface for running and inspecting merchant disbursements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoPayout API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Minute, "Request timeout")

	rootCmd.AddCommand(
		newDisbursementsCmd(opts),
		newMonthlyFeesCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(),
	)

	return rootCmd
}

func newDisbursementsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disbursements",
		Short: "Disbursement operations",
	}

	var date string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the disbursement batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result dto.BatchResultResponse
			req := dto.RunDisbursementsRequest{Date: date}
			if err := opts.client().post(cmd.Context(), "/api/v1/disbursements/runs", nil, req, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reference date: %s\n", result.ReferenceDate)
			fmt.Fprintf(out, "Disbursements created: %d\n", len(result.Successful))
			fmt.Fprintf(out, "Total amount: %s\n", formatEuros(result.TotalAmount.StringFixed(2)))
			fmt.Fprintf(out, "Total fees: %s\n", formatEuros(result.TotalFees.StringFixed(2)))
			fmt.Fprintf(out, "Failed merchants: %d\n", len(result.Failed))
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  %s (%s): %s\n", f.MerchantID, f.Reference, f.Error)
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")

	var scope string
	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay disbursements and monthly fees over historical orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result usecase.BackfillResult
			query := url.Values{"scope": {scope}}
			if err := opts.client().post(cmd.Context(), "/api/v1/disbursements/backfill", query, nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Days > 0 {
				fmt.Fprintf(out, "Days processed: %d (%s to %s)\n", result.Days, result.From.Format(dto.DateLayout), result.To.Format(dto.DateLayout))
			} else {
				fmt.Fprintln(out, "Days processed: 0")
			}
			fmt.Fprintf(out, "Disbursements created: %d\n", result.Successful)
			fmt.Fprintf(out, "Failed merchants: %d\n", result.Failed)
			fmt.Fprintf(out, "Months processed: %d\n", result.Months)
			fmt.Fprintf(out, "Monthly fees charged: %d\n", result.Adjustments)
			return nil
		},
	}
	backfillCmd.Flags().StringVar(&scope, "scope", "all", "What to replay: all, disbursements or monthly_fees")

	cmd.AddCommand(runCmd, backfillCmd)
	return cmd
}

func newMonthlyFeesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly-fees",
		Short: "Monthly minimum fee operations",
	}

	var month, year int
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Charge monthly minimum fees, for the previous month by default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.RunMonthlyFeesRequest{Month: month, Year: year}
			if err := req.Validate(); err != nil {
				return err
			}

			var result dto.MonthlyFeeResultResponse
			if err := opts.client().post(cmd.Context(), "/api/v1/monthly-fees/runs", nil, req, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period: %04d-%02d\n", result.Year, result.Month)
			fmt.Fprintf(out, "Adjustments created: %d\n", len(result.Created))
			fmt.Fprintf(out, "Skipped merchants: %d\n", result.Skipped)
			fmt.Fprintf(out, "Failed merchants: %d\n", len(result.Failed))
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  %s (%s): %s\n", f.MerchantID, f.Reference, f.Error)
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	runCmd.Flags().IntVar(&year, "year", 0, "Year")
	runCmd.MarkFlagsRequiredTogether("month", "year")

	cmd.AddCommand(runCmd)
	return cmd
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print yearly disbursement statistics as a Markdown table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if from != 0 {
				query.Set("from", strconv.Itoa(from))
			}
			if to != 0 {
				query.Set("to", strconv.Itoa(to))
			}

			var stats []dto.YearlyStatsResponse
			if err := opts.client().get(cmd.Context(), "/api/v1/stats", query, &stats); err != nil {
				return err
			}

			writeStatsTable(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First year, defaults to the current year")
	cmd.Flags().IntVar(&to, "to", 0, "Last year, defaults to the current year")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations using the server configuration",
	}

	migrate := func(down bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})

			migrator := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log)
			if down {
				return migrator.Down()
			}
			return migrator.Up()
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: migrate(false)},
		&cobra.Command{Use: "down", Short: "Revert the last migration", RunE: migrate(true)},
	)
	return cmd
}

var statsHeader = []string{
	"Year",
	"Number of disbursements",
	"Amount disbursed to merchants",
	"Amount of order fees",
	"Number of monthly fees charged",
	"Amount of monthly fee charged",
}

func writeStatsTable(out io.Writer, stats []dto.YearlyStatsResponse) {
	writeRow(out, statsHeader)

	separator := make([]string, len(statsHeader))
	for i := range separator {
		separator[i] = "---"
	}
	writeRow(out, separator)

	for _, s := range stats {
		writeRow(out, []string{
			strconv.Itoa(s.Year),
			strconv.FormatInt(s.DisbursementCount, 10),
			formatEuros(s.DisbursedAmount.StringFixed(2)),
			formatEuros(s.OrderFees.StringFixed(2)),
			strconv.FormatInt(s.MonthlyFeeCount, 10),
			formatEuros(s.MonthlyFeeAmount.StringFixed(2)),
		})
	}
}

func writeRow(out io.Writer, cells []string) {
	fmt.Fprintf(out, "| %s |\n", strings.Join(cells, " | "))
}

func formatEuros(amount string) string {
	return amount + " " + currencySymbol
}

func (o *cliOptions) client() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		http:    &http.Client{Timeout: o.timeout},
	}
}

// apiClient talks to the GoPayout HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s %s failed (status %d): %s: %s", method, path, resp.StatusCode, apiErr.Error, apiErr.Message)
			}
			return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
