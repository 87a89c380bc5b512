package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/session"
)

var errEnd = errors.New("end")

// Round plays one step of a game. It returns errEnd when the game is over.
type Round interface {
	Round(ctx context.Context) error
}

// InteractiveGameCLI contains the terminal plumbing shared by the games.
type InteractiveGameCLI struct {
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	clock        clock.Clock
	sleep        func(ctx context.Context, d time.Duration) error
	bold         *color.Color
	green        *color.Color
	red          *color.Color
}

func newInteractiveGameCLI(stdin io.Reader, stdout io.Writer, c clock.Clock) *InteractiveGameCLI {
	return &InteractiveGameCLI{
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		clock:        c,
		sleep:        sleepContext,
		bold:         color.New(color.Bold),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
	}
}

// Run plays rounds until the game ends, the input closes, or the process is interrupted.
func (cli *InteractiveGameCLI) Run(ctx context.Context, round Round) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := round.Round(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// readLine returns errEnd on end of input or when the user types quit or exit.
func (cli *InteractiveGameCLI) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(cli.stdoutWriter, prompt); err != nil {
		return "", fmt.Errorf("failed to write to stdout: %w", err)
	}
	line, err := cli.stdinReader.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", errEnd
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "quit" || line == "exit" {
		return "", errEnd
	}
	return line, nil
}

func (cli *InteractiveGameCLI) printResult(ok bool, format string, args ...any) error {
	mark, c := "✅ ", cli.green
	if !ok {
		mark, c = "❌ ", cli.red
	}
	if _, err := fmt.Fprint(cli.stdoutWriter, mark); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := c.Fprintf(cli.stdoutWriter, format, args...); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := fmt.Fprintln(cli.stdoutWriter); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GameCLI is a playable game that yields a session when it ends.
type GameCLI interface {
	Round
	Run(ctx context.Context, round Round) error
	Result() session.GameSession
}
