package session

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/at-ishikawa/neuronest/internal/clock"
)

// MatchingTracker records one matching-cards round as it is played.
type MatchingTracker struct {
	mu         sync.Mutex
	clock      clock.Clock
	startedAt  time.Time
	finishedAt time.Time
	stimulusAt time.Time
	correct    int
	wrong      int
	level      int
	reactions  []float64
}

func NewMatchingTracker(c clock.Clock) *MatchingTracker {
	now := c.Now()
	return &MatchingTracker{
		clock:      c,
		startedAt:  now,
		stimulusAt: now,
		level:      1,
	}
}

// MarkStimulus records when the cards became selectable.
func (t *MatchingTracker) MarkStimulus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stimulusAt = t.clock.Now()
}

// RecordReaction stores the time since the last stimulus when it falls inside the acceptance window.
func (t *MatchingTracker) RecordReaction() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished() || t.stimulusAt.IsZero() {
		return
	}
	ms := float64(t.clock.Now().Sub(t.stimulusAt)) / float64(time.Millisecond)
	if AcceptReaction(ms) {
		t.reactions = append(t.reactions, ms)
	}
}

func (t *MatchingTracker) RecordMatch(matched bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished() {
		return
	}
	if matched {
		t.correct++
	} else {
		t.wrong++
	}
}

// SetLevel records the highest board level reached.
func (t *MatchingTracker) SetLevel(level int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = max(t.level, level)
}

// Finish stops the clock. Later calls keep the first finish time.
func (t *MatchingTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.finished() {
		t.finishedAt = t.clock.Now()
	}
}

// Elapsed returns whole seconds since the round started.
func (t *MatchingTracker) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

func (t *MatchingTracker) Session() GameSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	end := t.clock.Now()
	if t.finished() {
		end = t.finishedAt
	}
	return NewMatchingSession(MatchingResult{
		CorrectMatches:  t.correct,
		WrongMatches:    t.wrong,
		ElapsedSeconds:  float64(t.elapsed()),
		LevelReached:    t.level,
		ReactionTimesMs: t.reactions,
	}, end)
}

func (t *MatchingTracker) elapsed() int {
	end := t.clock.Now()
	if t.finished() {
		end = t.finishedAt
	}
	return int(end.Sub(t.startedAt) / time.Second)
}

func (t *MatchingTracker) finished() bool {
	return !t.finishedAt.IsZero()
}

// MaxWrongAnswers ends a number-memory game.
const MaxWrongAnswers = 3

// NumberMemoryGame runs the number-span game: each correct answer lengthens the next number by one digit.
type NumberMemoryGame struct {
	clock     clock.Clock
	rng       *rand.Rand
	startedAt time.Time
	level     int
	maxSpan   int
	correct   int
	wrong     int
	rounds    int
	totalSpan int
	current   string
}

func NewNumberMemoryGame(c clock.Clock, rng *rand.Rand) *NumberMemoryGame {
	return &NumberMemoryGame{
		clock:     c,
		rng:       rng,
		startedAt: c.Now(),
		level:     1,
		maxSpan:   1,
	}
}

func (g *NumberMemoryGame) Level() int {
	return g.level
}

// NextNumber draws a number with as many digits as the current level. It never starts with 0.
func (g *NumberMemoryGame) NextNumber() string {
	var b strings.Builder
	b.WriteString(fmt.Sprint(g.rng.IntN(9) + 1))
	for i := 1; i < g.level; i++ {
		b.WriteString(fmt.Sprint(g.rng.IntN(10)))
	}
	g.current = b.String()
	return g.current
}

// DisplayDuration is how long the number stays on screen.
func (g *NumberMemoryGame) DisplayDuration() time.Duration {
	return time.Duration(min(2600, 900+g.level*120)) * time.Millisecond
}

// Submit checks answer against the last drawn number and adjusts the level. It reports whether the answer was right.
func (g *NumberMemoryGame) Submit(answer string) bool {
	if g.Over() || g.current == "" {
		return false
	}
	g.rounds++
	g.totalSpan += len(g.current)

	ok := strings.TrimSpace(answer) == g.current
	if ok {
		g.correct++
		g.maxSpan = max(g.maxSpan, len(g.current))
		g.level++
	} else {
		g.wrong++
		g.level = max(1, g.level-1)
	}
	g.current = ""
	return ok
}

func (g *NumberMemoryGame) Over() bool {
	return g.wrong >= MaxWrongAnswers
}

// AverageSpan is the mean number length over answered rounds.
func (g *NumberMemoryGame) AverageSpan() float64 {
	if g.rounds == 0 {
		return 0
	}
	return float64(g.totalSpan) / float64(g.rounds)
}

// Session builds the live-game session; its score is the longest span recalled.
func (g *NumberMemoryGame) Session() GameSession {
	now := g.clock.Now()
	return NewNumberMemorySession(NumberMemoryResult{
		Correct:      g.correct,
		Wrong:        g.wrong,
		LevelReached: g.maxSpan,
		DurationSec:  now.Sub(g.startedAt).Seconds(),
	}, now)
}
