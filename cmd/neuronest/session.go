package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/cli"
	"github.com/at-ishikawa/neuronest/internal/session"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record and list game sessions",
	}
	cmd.AddCommand(
		newSessionAddMatchingCommand(),
		newSessionAddNumberMemoryCommand(),
		newSessionListCommand(),
		newSessionClearCommand(),
	)
	return cmd
}

func newSessionAddMatchingCommand() *cobra.Command {
	var result session.MatchingResult

	cmd := &cobra.Command{
		Use:   "add-matching",
		Short: "Record a finished matching-cards round",
		RunE: func(cmd *cobra.Command, args []string) error {
			if result.CorrectMatches < 0 || result.WrongMatches < 0 {
				return fmt.Errorf("--correct and --wrong must not be negative")
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				s := session.NewMatchingSession(result, svc.Clock.Now())
				if err := recordSession(cmd.Context(), svc, s); err != nil {
					return err
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Sessions([]session.GameSession{s})
			})
		},
	}

	cmd.Flags().IntVar(&result.CorrectMatches, "correct", 0, "Number of correct matches")
	cmd.Flags().IntVar(&result.WrongMatches, "wrong", 0, "Number of wrong matches")
	cmd.Flags().Float64Var(&result.ElapsedSeconds, "elapsed", 0, "Elapsed seconds")
	cmd.Flags().IntVar(&result.LevelReached, "level", 1, "Level reached")
	cmd.Flags().Float64SliceVar(&result.ReactionTimesMs, "rt", nil, "Reaction times in milliseconds")

	return cmd
}

func newSessionAddNumberMemoryCommand() *cobra.Command {
	var result session.NumberMemoryResult
	var quotaScoring bool

	cmd := &cobra.Command{
		Use:   "add-number-memory",
		Short: "Record a finished number-memory round",
		RunE: func(cmd *cobra.Command, args []string) error {
			if result.Correct < 0 || result.Wrong < 0 || result.LevelReached < 0 {
				return fmt.Errorf("--correct, --wrong and --level must not be negative")
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				s := session.NewNumberMemorySession(result, svc.Clock.Now())
				if quotaScoring {
					s = session.NewNumberMemoryQuotaSession(result, svc.Clock.Now())
				}
				if err := recordSession(cmd.Context(), svc, s); err != nil {
					return err
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Sessions([]session.GameSession{s})
			})
		},
	}

	cmd.Flags().IntVar(&result.Correct, "correct", 0, "Number of correct answers")
	cmd.Flags().IntVar(&result.Wrong, "wrong", 0, "Number of wrong answers")
	cmd.Flags().IntVar(&result.LevelReached, "level", 0, "Longest span recalled")
	cmd.Flags().Float64Var(&result.DurationSec, "duration", 0, "Duration in seconds")
	cmd.Flags().BoolVar(&quotaScoring, "quota", false, "Score with the daily-summary formula")

	return cmd
}

func newSessionListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				sessions, err := svc.Sessions.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("sessions.All() > %w", err)
				}
				if limit > 0 {
					sessions = session.Recent(sessions, limit)
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Sessions(sessions)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the most recent sessions (0 for all)")

	return cmd
}

func newSessionClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				if err := svc.Sessions.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("sessions.Clear() > %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cleared all sessions.")
				return err
			})
		},
	}
}

func recordSession(ctx context.Context, svc *bootstrap.Services, s session.GameSession) error {
	if err := svc.Sessions.Add(ctx, s); err != nil {
		return fmt.Errorf("sessions.Add() > %w", err)
	}
	svc.Metrics.IncSessionsRecorded(s.Game)
	return nil
}
