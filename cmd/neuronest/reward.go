package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/cli"
)

func newLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and credit the premium reward ledger",
	}
	cmd.AddCommand(
		newLedgerStatusCommand(),
		newLedgerCreditCommand(),
		newLedgerCompleteCommand(),
		newLedgerResetCommand(),
		newLedgerClearCommand(),
	)
	return cmd
}

func newLedgerStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show premium status and credit progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				return printLedger(cmd, svc)
			})
		},
	}
}

func newLedgerCreditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "credit <seconds>",
		Short: "Credit watched seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[0], err)
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				granted, err := svc.Ledger.AddWatchCredit(cmd.Context(), seconds)
				if err != nil {
					return fmt.Errorf("ledger.AddWatchCredit() > %w", err)
				}
				return printGrant(cmd, svc, granted)
			})
		},
	}
}

func newLedgerCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Credit one completed ad",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				granted, err := svc.Ledger.AddCompletion(cmd.Context())
				if err != nil {
					return fmt.Errorf("ledger.AddCompletion() > %w", err)
				}
				return printGrant(cmd, svc, granted)
			})
		},
	}
}

func newLedgerResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset accumulated credit and keep any active premium",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				if err := svc.Ledger.ResetProgress(cmd.Context()); err != nil {
					return fmt.Errorf("ledger.ResetProgress() > %w", err)
				}
				return printLedger(cmd, svc)
			})
		},
	}
}

func newLedgerClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "End premium access and keep accumulated credit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				if err := svc.Ledger.ClearPremium(cmd.Context()); err != nil {
					return fmt.Errorf("ledger.ClearPremium() > %w", err)
				}
				return printLedger(cmd, svc)
			})
		},
	}
}

func newQuotaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show today's AI query usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				used, err := svc.Quota.Used(cmd.Context())
				if err != nil {
					return fmt.Errorf("quota.Used() > %w", err)
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Quota(used, svc.Quota.Limit())
			})
		},
	}
}

func printGrant(cmd *cobra.Command, svc *bootstrap.Services, granted bool) error {
	if granted {
		svc.Metrics.IncPremiumGrants()
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "🎉 Premium unlocked!"); err != nil {
			return err
		}
	}
	return printLedger(cmd, svc)
}

func printLedger(cmd *cobra.Command, svc *bootstrap.Services) error {
	status, err := svc.Ledger.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("ledger.Status() > %w", err)
	}
	return cli.NewPrinter(cmd.OutOrStdout()).Ledger(status)
}
