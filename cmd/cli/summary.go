package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/infrastructure/auth"
)

func summaryCmd(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expense, balance and recent daily expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SummaryResponse
			path := fmt.Sprintf("/summary?days=%d", days)
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
				return err
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return printSummary(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days of daily expense totals")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		scope   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, scope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret shared with the server")
	cmd.Flags().StringVar(&subject, "subject", "expensectl", "Token subject")
	cmd.Flags().StringVar(&scope, "scope", auth.ScopeWrite, "Token scope (read or write)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
