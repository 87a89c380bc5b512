package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/cli"
	"github.com/at-ishikawa/neuronest/internal/focus"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/report"
	"github.com/at-ishikawa/neuronest/internal/session"
)

func newFocusCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show the focus score of the recent matching rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				sessions, err := svc.Sessions.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("sessions.All() > %w", err)
				}
				printer := cli.NewPrinter(cmd.OutOrStdout())
				if err := printer.Focus(focus.Evaluate(sessions)); err != nil {
					return err
				}
				return printer.Trend(
					session.TotalScoreLast(sessions, focus.WindowSize),
					focus.WindowSize,
					session.DailyScorePoints(sessions, days, svc.Clock.Now()),
				)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days in the daily score trend")

	return cmd
}

func newEventsCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming calendar events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				events, err := svc.Calendar.Events(cmd.Context())
				if err != nil {
					return fmt.Errorf("calendar.Events() > %w", err)
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Events(calendar.Upcoming(events, svc.Clock.Now(), days))
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Show events starting within this many days")

	return cmd
}

func newReportCommand() *cobra.Command {
	var withAI bool
	var pdfPath string
	var markdownPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recent sessions, optionally with an AI-written report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pdfPath != "" && !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
				return fmt.Errorf("--pdf must have .pdf extension: %s", pdfPath)
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				sessions, err := svc.Sessions.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("sessions.All() > %w", err)
				}

				out := cmd.OutOrStdout()
				summary := report.Summarize(sessions)
				if err := cli.NewPrinter(out).Summary(summary); err != nil {
					return err
				}

				var aiText string
				if withAI {
					aiText, err = svc.Reports.Generate(cmd.Context(), sessions)
					switch {
					case errors.Is(err, report.ErrNoSessions):
						_, err = fmt.Fprintln(out, "\nPlay a game first to get an AI report.")
						if err != nil {
							return err
						}
					case err != nil:
						return errors.New(inference.UserMessage(errors.Unwrap(err)))
					default:
						if _, err := fmt.Fprintf(out, "\nAI Report\n%s\n", aiText); err != nil {
							return err
						}
					}
				}

				markdown := report.RenderMarkdown(summary, aiText)
				if markdownPath != "" {
					if err := os.WriteFile(markdownPath, []byte(markdown), 0644); err != nil {
						return fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
					}
					if _, err := fmt.Fprintf(out, "Saved markdown to %s\n", markdownPath); err != nil {
						return err
					}
				}
				if pdfPath != "" {
					path, err := report.ExportPDF(markdown, pdfPath)
					if err != nil {
						return fmt.Errorf("report.ExportPDF() > %w", err)
					}
					if _, err := fmt.Fprintf(out, "Saved PDF to %s\n", path); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withAI, "ai", false, "Ask the AI provider for a written report")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Export the report to this PDF file")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Write the report as Markdown to this file")

	return cmd
}

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <question>",
		Short: "Search sessions and calendar events, then ask the AI coach",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				result := svc.Assistant.Ask(cmd.Context(), query)
				svc.Metrics.IncAssistantQueries(string(result.State))
				return cli.NewPrinter(cmd.OutOrStdout()).AssistantResult(result)
			})
		},
	}
}
