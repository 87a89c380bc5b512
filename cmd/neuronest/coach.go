package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/cli"
	"github.com/at-ishikawa/neuronest/internal/diet"
	"github.com/at-ishikawa/neuronest/internal/inference"
)

func newDietCommand() *cobra.Command {
	var budget string
	var calories string
	var cachedOnly bool
	var deleteCached bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "diet [breakfast|lunch|dinner]",
		Short: "Suggest a meal for a better focus, cached per meal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
					if err := svc.Diet.ClearAll(cmd.Context()); err != nil {
						return fmt.Errorf("diet.ClearAll() > %w", err)
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cleared all cached meals.")
					return err
				})
			}
			if len(args) == 0 {
				return fmt.Errorf("a meal is required: breakfast, lunch or dinner")
			}
			meal, err := diet.ParseMeal(args[0])
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				out := cmd.OutOrStdout()
				switch {
				case deleteCached:
					if err := svc.Diet.Delete(cmd.Context(), meal); err != nil {
						return fmt.Errorf("diet.Delete() > %w", err)
					}
					_, err := fmt.Fprintf(out, "Deleted cached %s.\n", meal)
					return err
				case cachedOnly:
					item, ok, err := svc.Diet.Cached(cmd.Context(), meal)
					if err != nil {
						return fmt.Errorf("diet.Cached() > %w", err)
					}
					if !ok {
						_, err := fmt.Fprintf(out, "No cached %s yet.\n", meal)
						return err
					}
					return cli.NewPrinter(out).DietPlan(item)
				}

				item, err := svc.Diet.Generate(cmd.Context(), meal, budget, calories)
				if err != nil {
					return errors.New(inference.UserMessage(errors.Unwrap(err)))
				}
				return cli.NewPrinter(out).DietPlan(item)
			})
		},
	}

	cmd.Flags().StringVar(&budget, "budget", diet.DefaultBudget, "Budget hint for the meal")
	cmd.Flags().StringVar(&calories, "calories", "", "Calorie hint, e.g. 600kcal")
	cmd.Flags().BoolVar(&cachedOnly, "cached", false, "Show the cached suggestion without calling the AI provider")
	cmd.Flags().BoolVar(&deleteCached, "delete", false, "Delete the cached suggestion for the meal")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every cached suggestion")

	return cmd
}

func newSurveyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "survey <chat-file|->",
		Short: "Analyze a pasted chat and add a short cheer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := readChat(cmd, args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				result, err := svc.Survey.Analyze(cmd.Context(), chat)
				if err != nil {
					if unwrapped := errors.Unwrap(err); unwrapped != nil {
						return errors.New(inference.UserMessage(unwrapped))
					}
					return err
				}
				return cli.NewPrinter(cmd.OutOrStdout()).Survey(result)
			})
		},
	}
}

func readChat(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	return string(data), nil
}
