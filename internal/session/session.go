// Package session scores cognitive mini-game rounds and keeps the play history.
package session

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	GameMatching     = "matching"
	GameNumberMemory = "NumberMemory"
)

// Reaction samples outside (MinReactionMs, MaxReactionMs) are discarded as noise.
const (
	MinReactionMs = 0
	MaxReactionMs = 30000
)

// GameSession is one finished round. It is never modified after it is built.
type GameSession struct {
	ID              string    `json:"id"`
	Game            string    `json:"game"`
	Date            time.Time `json:"date"`
	Correct         int       `json:"correct"`
	Wrong           int       `json:"wrong"`
	LevelReached    int       `json:"levelReached"`
	DurationSec     float64   `json:"durationSec"`
	Score           int       `json:"score"`
	ReactionTimesMs []float64 `json:"reactionTimesMs"`
}

// Attempts is the number of answered items in the session.
func (s GameSession) Attempts() int {
	return s.Correct + s.Wrong
}

// AccuracyPercent is 100*correct/attempts rounded, with at least one attempt in the denominator.
func (s GameSession) AccuracyPercent() int {
	return int(math.Round(100 * float64(s.Correct) / float64(max(1, s.Attempts()))))
}

type MatchingResult struct {
	CorrectMatches  int
	WrongMatches    int
	ElapsedSeconds  float64
	LevelReached    int
	ReactionTimesMs []float64
}

type NumberMemoryResult struct {
	Correct      int
	Wrong        int
	LevelReached int
	DurationSec  float64
}

// NewMatchingSession builds a matching-cards session scored by accuracy.
func NewMatchingSession(result MatchingResult, now time.Time) GameSession {
	correct := max(0, result.CorrectMatches)
	wrong := max(0, result.WrongMatches)
	level := result.LevelReached
	if level <= 0 {
		level = 1
	}

	reactions := make([]float64, 0, len(result.ReactionTimesMs))
	for _, ms := range result.ReactionTimesMs {
		if AcceptReaction(ms) {
			reactions = append(reactions, ms)
		}
	}

	return GameSession{
		ID:              uuid.NewString(),
		Game:            GameMatching,
		Date:            now,
		Correct:         correct,
		Wrong:           wrong,
		LevelReached:    level,
		DurationSec:     math.Max(0, result.ElapsedSeconds),
		Score:           MatchingScore(correct, wrong),
		ReactionTimesMs: reactions,
	}
}

// NewNumberMemorySession builds a session from a live number-memory game. The score is the longest span recalled.
func NewNumberMemorySession(result NumberMemoryResult, now time.Time) GameSession {
	s := numberMemorySession(result, now)
	s.Score = s.LevelReached
	return s
}

// NewNumberMemoryQuotaSession builds a number-memory session for the daily summary,
// scored by NumberMemoryQuotaScore.
func NewNumberMemoryQuotaSession(result NumberMemoryResult, now time.Time) GameSession {
	s := numberMemorySession(result, now)
	s.Score = NumberMemoryQuotaScore(s.Correct, s.Wrong, s.LevelReached)
	return s
}

func numberMemorySession(result NumberMemoryResult, now time.Time) GameSession {
	return GameSession{
		ID:              uuid.NewString(),
		Game:            GameNumberMemory,
		Date:            now,
		Correct:         max(0, result.Correct),
		Wrong:           max(0, result.Wrong),
		LevelReached:    max(0, result.LevelReached),
		DurationSec:     math.Max(0, result.DurationSec),
		ReactionTimesMs: []float64{},
	}
}

func MatchingScore(correct, wrong int) int {
	correct = max(0, correct)
	wrong = max(0, wrong)
	return int(math.Round(100 * float64(correct) / float64(max(1, correct+wrong))))
}

func NumberMemoryQuotaScore(correct, wrong, level int) int {
	return max(0, correct*10-wrong*5+level*3)
}

func AcceptReaction(ms float64) bool {
	return ms > MinReactionMs && ms < MaxReactionMs
}
