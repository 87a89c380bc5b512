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

var cardFaces = []string{"🍎", "🍌", "🍇", "🍒", "🍋", "🥝", "🍑", "🍍"}

const (
	DefaultMatchingRounds = 20
	matchesPerLevel       = 5
)

// MatchingCLI shows two cards per round and asks whether they match.
type MatchingCLI struct {
	*InteractiveGameCLI
	tracker *session.MatchingTracker
	rng     *rand.Rand
	rounds  int
	played  int
	correct int
	wrong   int
}

func NewMatchingCLI(stdin io.Reader, stdout io.Writer, c clock.Clock, rng *rand.Rand, rounds int) *MatchingCLI {
	if rounds <= 0 {
		rounds = DefaultMatchingRounds
	}
	return &MatchingCLI{
		InteractiveGameCLI: newInteractiveGameCLI(stdin, stdout, c),
		tracker:            session.NewMatchingTracker(c),
		rng:                rng,
		rounds:             rounds,
	}
}

func (r *MatchingCLI) Round(_ context.Context) error {
	if r.played >= r.rounds {
		return errEnd
	}

	left := cardFaces[r.rng.IntN(len(cardFaces))]
	right := left
	if r.rng.IntN(2) == 0 {
		right = cardFaces[r.rng.IntN(len(cardFaces))]
	}

	r.tracker.MarkStimulus()
	answer, err := r.readLine(fmt.Sprintf("%s  %s   match? [y/n]: ", left, right))
	if err != nil {
		return err
	}
	r.tracker.RecordReaction()
	r.played++

	saidMatch := strings.HasPrefix(strings.ToLower(answer), "y")
	ok := saidMatch == (left == right)
	r.tracker.RecordMatch(ok)
	if ok {
		r.correct++
		r.tracker.SetLevel(1 + r.correct/matchesPerLevel)
		return r.printResult(true, "Correct")
	}
	r.wrong++
	return r.printResult(false, "Wrong")
}

func (r *MatchingCLI) Result() session.GameSession {
	r.tracker.Finish()
	return r.tracker.Session()
}
