// Package focus turns recent matching-game performance into a 0-100 focus score.
package focus

import (
	"math"
	"slices"

	"github.com/at-ishikawa/neuronest/internal/session"
)

type Level string

const (
	LevelGood     Level = "Good"
	LevelModerate Level = "Moderate"
	LevelMild     Level = "Mild"
	LevelMedium   Level = "Medium"
	LevelDanger   Level = "Danger"
)

const (
	// WindowSize is how many of the most recent matching sessions are scored.
	WindowSize = 10
	// DefaultMedianMs stands in for the median when no reaction samples exist.
	DefaultMedianMs = 1500.0

	slowestMs       = 2500.0
	reactionRangeMs = 2000.0
	accuracyWeight  = 0.55
	reactionWeight  = 0.45
)

type Result struct {
	Score    int     `json:"score"`
	Level    Level   `json:"level"`
	Accuracy float64 `json:"accuracy"`
	P50      float64 `json:"p50"`
	RTNorm   float64 `json:"rtNorm"`
	Sessions int     `json:"sessions"`
}

// Evaluate scores the last WindowSize sessions whose game is exactly "matching".
func Evaluate(sessions []session.GameSession) Result {
	window := session.Recent(session.FilterGame(sessions, session.GameMatching), WindowSize)
	if len(window) == 0 {
		return Result{Score: 0, Level: FocusLevel(0)}
	}

	correct, wrong := 0, 0
	var samples []float64
	for _, s := range window {
		correct += s.Correct
		wrong += s.Wrong
		samples = append(samples, s.ReactionTimesMs...)
	}
	accuracy := float64(correct) / float64(max(1, correct+wrong))

	p50 := DefaultMedianMs
	if len(samples) > 0 {
		slices.Sort(samples)
		p50 = samples[len(samples)/2]
	}
	rtNorm := math.Min(1, math.Max(0, (slowestMs-p50)/reactionRangeMs))

	score := int(math.Round((accuracy*accuracyWeight + rtNorm*reactionWeight) * 100))
	return Result{
		Score:    score,
		Level:    FocusLevel(score),
		Accuracy: accuracy,
		P50:      p50,
		RTNorm:   rtNorm,
		Sessions: len(window),
	}
}

func Score(sessions []session.GameSession) int {
	return Evaluate(sessions).Score
}

func FocusLevel(score int) Level {
	switch {
	case score >= 85:
		return LevelGood
	case score >= 70:
		return LevelModerate
	case score >= 55:
		return LevelMild
	case score >= 40:
		return LevelMedium
	default:
		return LevelDanger
	}
}

// AccuracyLevel grades an accuracy percentage on the stricter report scale.
func AccuracyLevel(percent int) Level {
	switch {
	case percent >= 90:
		return LevelGood
	case percent >= 75:
		return LevelModerate
	case percent >= 60:
		return LevelMild
	case percent >= 45:
		return LevelMedium
	default:
		return LevelDanger
	}
}
