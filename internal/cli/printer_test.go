package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/neuronest/internal/assistant"
	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/focus"
	"github.com/at-ishikawa/neuronest/internal/report"
	"github.com/at-ishikawa/neuronest/internal/reward"
	"github.com/at-ishikawa/neuronest/internal/session"
	"github.com/at-ishikawa/neuronest/internal/survey"
)

type failingWriter struct{}

func (failingWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestPrinter(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	until := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		print      func(p *Printer) error
		wantOutput []string
	}{
		{
			name:       "no sessions",
			print:      func(p *Printer) error { return p.Sessions(nil) },
			wantOutput: []string{"No sessions recorded yet."},
		},
		{
			name: "sessions",
			print: func(p *Printer) error {
				return p.Sessions([]session.GameSession{
					{Game: session.GameMatching, Correct: 8, Wrong: 2, LevelReached: 2, DurationSec: 41.6, Score: 80},
				})
			},
			wantOutput: []string{"matching", "✅8", "❌2", " 80%", "lv2", "42s", "score 80"},
		},
		{
			name: "session duration just under half a second",
			print: func(p *Printer) error {
				return p.Sessions([]session.GameSession{
					{Game: session.GameNumberMemory, LevelReached: 3, DurationSec: 0.49999999999999994, Score: 3},
				})
			},
			wantOutput: []string{"   0s  score 3"},
		},
		{
			name: "focus",
			print: func(p *Printer) error {
				return p.Focus(focus.Result{Score: 89, Level: focus.LevelGood, Accuracy: 0.8, P50: 500, Sessions: 1})
			},
			wantOutput: []string{"Focus score: 89 (Good)", "Accuracy 80% · RT P50 500ms · 1 sessions"},
		},
		{
			name:       "focus without data",
			print:      func(p *Printer) error { return p.Focus(focus.Evaluate(nil)) },
			wantOutput: []string{"Focus score: 0 (Danger)", "Play a matching round"},
		},
		{
			name: "summary",
			print: func(p *Printer) error {
				return p.Summary(report.Summary{Correct: 12, Wrong: 3, Level: focus.LevelModerate, AvgSeconds: 51, RTP50Ms: 500, Sessions: 2})
			},
			wantOutput: []string{"Summary (recent 10)", "✅ 12   ❌ 3   🎯 Moderate", "Avg time: 51s · RT P50: 500ms · Sessions: 2"},
		},
		{
			name: "ledger inactive",
			print: func(p *Printer) error {
				return p.Ledger(reward.Status{AccumulatedSeconds: 75, TargetSeconds: 100, ProgressSeconds: 75, RemainingSeconds: 25, Progress01: 0.75})
			},
			wantOutput: []string{"Premium inactive", "Progress: 75/100s (75%), 25s remaining"},
		},
		{
			name: "ledger premium",
			print: func(p *Printer) error {
				return p.Ledger(reward.Status{IsPremium: true, PremiumUntil: &until, TargetSeconds: 100, RemainingSeconds: 100})
			},
			wantOutput: []string{"Premium active until " + until.Local().Format(dateLayout)},
		},
		{
			name:       "quota",
			print:      func(p *Printer) error { return p.Quota(20, 20) },
			wantOutput: []string{"AI queries today: 20/20 (0 remaining)"},
		},
		{
			name: "assistant answered",
			print: func(p *Printer) error {
				return p.AssistantResult(assistant.Result{
					State:  assistant.StateAnswered,
					Hits:   []assistant.Hit{{Title: "Session: matching", Snippet: "matching ✅8 ❌2 80% 40s"}},
					Answer: "Play again tonight.",
				})
			},
			wantOutput: []string{"Local matches (1)", "- Session: matching: matching ✅8 ❌2 80% 40s", "AI answer", "Play again tonight."},
		},
		{
			name: "assistant failed",
			print: func(p *Printer) error {
				return p.AssistantResult(assistant.Result{State: assistant.StateFailed, Message: "AI response parsing failed."})
			},
			wantOutput: []string{"- (no local matches)", "❌ AI response parsing failed."},
		},
		{
			name:       "survey",
			print:      func(p *Printer) error { return p.Survey(survey.Result{Analysis: "1) Summary", Cheer: "Nice!"}) },
			wantOutput: []string{"1) Summary", "Nice!"},
		},
		{
			name: "trend",
			print: func(p *Printer) error {
				day := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
				return p.Trend(135, 10, []session.DailyPoint{
					{Date: day, Score: 0},
					{Date: day.AddDate(0, 0, 1), Score: 25},
					{Date: day.AddDate(0, 0, 2), Score: 900},
				})
			},
			wantOutput: []string{
				"Total score (last 10 sessions): 135",
				"05-03  0\n",
				"05-04 ▇▇▇ 25\n",
				"05-05 " + strings.Repeat("▇", 30) + " 900\n",
			},
		},
		{
			name:       "no events",
			print:      func(p *Printer) error { return p.Events(nil) },
			wantOutput: []string{"No upcoming events."},
		},
		{
			name: "events",
			print: func(p *Printer) error {
				return p.Events([]calendar.Event{
					{Title: "Dentist", Start: until, Location: "Main St"},
					{Start: until.Add(time.Hour)},
				})
			},
			wantOutput: []string{"Dentist @ Main St", "(No title)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.print(NewPrinter(&buf)))
			for _, want := range tt.wantOutput {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrinter_WriteError(t *testing.T) {
	err := NewPrinter(failingWriter{}).Quota(1, 20)
	assert.ErrorContains(t, err, "closed pipe")
}
