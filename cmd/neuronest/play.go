package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/cli"
	"github.com/at-ishikawa/neuronest/internal/session"
)

// newRand is replaced in tests.
var newRand = func() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>32))
}

func newPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal and record the session",
	}
	cmd.AddCommand(
		newPlayMatchingCommand(),
		newPlayNumberMemoryCommand(),
	)
	return cmd
}

func newPlayMatchingCommand() *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "matching",
		Short: "Decide whether two cards match as fast as you can",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				game := cli.NewMatchingCLI(cmd.InOrStdin(), cmd.OutOrStdout(), svc.Clock, newRand(), rounds)
				return playGame(cmd, svc, game)
			})
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", cli.DefaultMatchingRounds, "Number of card pairs to show")

	return cmd
}

func newPlayNumberMemoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "number-memory",
		Short: "Memorize a number that grows one digit per level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				game := cli.NewNumberMemoryCLI(cmd.InOrStdin(), cmd.OutOrStdout(), svc.Clock, newRand())
				if err := playGame(cmd, svc, game); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Average span: %.1f digits\n", game.AverageSpan())
				return err
			})
		},
	}
}

func playGame(cmd *cobra.Command, svc *bootstrap.Services, game cli.GameCLI) error {
	if err := game.Run(cmd.Context(), game); err != nil {
		return err
	}

	s := game.Result()
	if s.Attempts() == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No rounds played, nothing recorded.")
		return err
	}
	if err := recordSession(cmd.Context(), svc, s); err != nil {
		return err
	}
	return cli.NewPrinter(cmd.OutOrStdout()).Sessions([]session.GameSession{s})
}
