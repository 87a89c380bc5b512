package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/session"
)

// NumberMemoryCLI shows a number briefly and asks the player to type it back.
type NumberMemoryCLI struct {
	*InteractiveGameCLI
	game *session.NumberMemoryGame
}

func NewNumberMemoryCLI(stdin io.Reader, stdout io.Writer, c clock.Clock, rng *rand.Rand) *NumberMemoryCLI {
	return &NumberMemoryCLI{
		InteractiveGameCLI: newInteractiveGameCLI(stdin, stdout, c),
		game:               session.NewNumberMemoryGame(c, rng),
	}
}

func (r *NumberMemoryCLI) Round(ctx context.Context) error {
	if r.game.Over() {
		return errEnd
	}

	number := r.game.NextNumber()
	line := fmt.Sprintf("Level %d: %s", r.game.Level(), r.bold.Sprint(number))
	if _, err := fmt.Fprint(r.stdoutWriter, line); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if err := r.sleep(ctx, r.game.DisplayDuration()); err != nil {
		return errEnd
	}
	// hide the number before asking for it
	if _, err := fmt.Fprint(r.stdoutWriter, "\r"+strings.Repeat(" ", len(line))+"\r"); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	answer, err := r.readLine("Number: ")
	if err != nil {
		return err
	}
	if r.game.Submit(answer) {
		return r.printResult(true, "Correct. Next level %d", r.game.Level())
	}
	if err := r.printResult(false, "It was %s", number); err != nil {
		return err
	}
	if r.game.Over() {
		return errEnd
	}
	return nil
}

func (r *NumberMemoryCLI) Result() session.GameSession {
	return r.game.Session()
}

func (r *NumberMemoryCLI) AverageSpan() float64 {
	return r.game.AverageSpan()
}
