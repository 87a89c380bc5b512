// Package report summarizes recent sessions and asks the chat model for a short coaching report.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/at-ishikawa/neuronest/internal/focus"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/session"
)

const (
	SummaryWindow = 10
	ChartWindow   = 20
	PromptWindow  = 12

	reportTemperature = 0.4
	reportMaxTokens   = 450
)

var ErrNoSessions = errors.New("no sessions recorded yet")

type Summary struct {
	Correct         int         `json:"correct"`
	Wrong           int         `json:"wrong"`
	AccuracyPercent int         `json:"accuracyPercent"`
	Level           focus.Level `json:"level"`
	AvgSeconds      int         `json:"avgSeconds"`
	RTP50Ms         int         `json:"rtP50Ms"`
	Sessions        int         `json:"sessions"`
}

// Summarize aggregates the last SummaryWindow sessions of every game.
func Summarize(sessions []session.GameSession) Summary {
	recent := session.Recent(sessions, SummaryWindow)
	var s Summary
	totalSeconds := 0
	for _, gs := range recent {
		s.Correct += gs.Correct
		s.Wrong += gs.Wrong
		totalSeconds += int(math.Round(gs.DurationSec))
	}
	if total := s.Correct + s.Wrong; total > 0 {
		s.AccuracyPercent = int(math.Round(float64(s.Correct) / float64(total) * 100))
	}
	s.Level = focus.AccuracyLevel(s.AccuracyPercent)
	if len(recent) > 0 {
		s.AvgSeconds = totalSeconds / len(recent)
	}
	s.RTP50Ms = int(session.MatchingRTStats(sessions, SummaryWindow).P50)
	s.Sessions = len(recent)
	return s
}

type ChartPoint struct {
	Date            time.Time `json:"date"`
	AccuracyPercent float64   `json:"accuracyPercent"`
	Seconds         int       `json:"seconds"`
}

func ChartPoints(sessions []session.GameSession) []ChartPoint {
	recent := session.Recent(sessions, ChartWindow)
	points := make([]ChartPoint, 0, len(recent))
	for _, s := range recent {
		points = append(points, ChartPoint{
			Date:            s.Date,
			AccuracyPercent: float64(s.Correct) / float64(max(1, s.Attempts())) * 100,
			Seconds:         int(math.Round(s.DurationSec)),
		})
	}
	return points
}

// SessionLine formats one session for the report prompt.
func SessionLine(s session.GameSession) string {
	p50 := 0
	if len(s.ReactionTimesMs) > 0 {
		sorted := slices.Sorted(slices.Values(s.ReactionTimesMs))
		p50 = int(math.Round(sorted[len(sorted)/2]))
	}
	return fmt.Sprintf("- %s | ✅%d ❌%d 🎯%s | %ds | RT P50 %dms | %s",
		s.Game,
		s.Correct,
		s.Wrong,
		focus.AccuracyLevel(s.AccuracyPercent()),
		int(math.Round(s.DurationSec)),
		p50,
		s.Date.UTC().Format(time.RFC3339),
	)
}

const reportSystemPrompt = `You are the cognitive-training coach of the Neuronest app.
Write a short, friendly report based only on the recent records.
Do not speak like a medical diagnosis; use a training and habit coaching tone.`

const reportFormat = `Output format:
1) Summary (2-3 sentences)
2) One strength
3) One thing to improve
4) One goal for tomorrow (with a number)
5) A 7-day plan (very short)`

type Generator struct {
	client inference.Client
}

func NewGenerator(client inference.Client) *Generator {
	return &Generator{client: client}
}

// Generate asks for a five-part report over the last PromptWindow sessions.
func (g *Generator) Generate(ctx context.Context, sessions []session.GameSession) (string, error) {
	recent := session.Recent(sessions, PromptWindow)
	if len(recent) == 0 {
		return "", ErrNoSessions
	}

	lines := make([]string, 0, len(recent))
	for _, s := range recent {
		lines = append(lines, SessionLine(s))
	}

	text, err := g.client.Generate(ctx, inference.GenerateRequest{
		SystemPrompt: reportSystemPrompt,
		UserPrompt:   reportFormat + "\n\nRecent records:\n" + strings.Join(lines, "\n"),
		Temperature:  reportTemperature,
		MaxTokens:    reportMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("client.Generate() > %w", err)
	}
	return text, nil
}
