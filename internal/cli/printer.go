package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/neuronest/internal/assistant"
	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/diet"
	"github.com/at-ishikawa/neuronest/internal/focus"
	"github.com/at-ishikawa/neuronest/internal/report"
	"github.com/at-ishikawa/neuronest/internal/reward"
	"github.com/at-ishikawa/neuronest/internal/session"
	"github.com/at-ishikawa/neuronest/internal/survey"
)

const (
	dateLayout  = "2006-01-02 15:04"
	maxBarWidth = 30
)

// Printer renders command results for a terminal.
type Printer struct {
	w      io.Writer
	bold   *color.Color
	faint  *color.Color
	green  *color.Color
	cyan   *color.Color
	yellow *color.Color
	red    *color.Color
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:      w,
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
		green:  color.New(color.FgGreen),
		cyan:   color.New(color.FgCyan),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
}

func (p *Printer) Sessions(sessions []session.GameSession) error {
	if len(sessions) == 0 {
		return p.write("No sessions recorded yet.\n")
	}
	var b strings.Builder
	for _, s := range sessions {
		fmt.Fprintf(&b, "%s  %-12s ✅%-3d ❌%-3d %3d%%  lv%-2d %4ds  score %d\n",
			p.faint.Sprint(s.Date.Local().Format(dateLayout)),
			s.Game,
			s.Correct,
			s.Wrong,
			s.AccuracyPercent(),
			s.LevelReached,
			int(math.Round(s.DurationSec)),
			s.Score,
		)
	}
	return p.write(b.String())
}

func (p *Printer) Focus(result focus.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n",
		p.bold.Sprint("Focus score:"),
		p.levelColor(result.Level).Sprintf("%d", result.Score),
		result.Level,
	)
	if result.Sessions == 0 {
		b.WriteString("Play a matching round to get a focus score.\n")
		return p.write(b.String())
	}
	fmt.Fprintf(&b, "Accuracy %.0f%% · RT P50 %.0fms · %d sessions\n",
		result.Accuracy*100, result.P50, result.Sessions)
	return p.write(b.String())
}

// Trend prints the total score of the last window sessions and one bar per day.
func (p *Printer) Trend(total int, window int, points []session.DailyPoint) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", p.bold.Sprintf("Total score (last %d sessions):", window), total)
	for _, point := range points {
		bar := strings.Repeat("▇", min(maxBarWidth, (point.Score+9)/10))
		fmt.Fprintf(&b, "%s %s %d\n", p.faint.Sprint(point.Date.Format("01-02")), p.cyan.Sprint(bar), point.Score)
	}
	return p.write(b.String())
}

func (p *Printer) Events(events []calendar.Event) error {
	if len(events) == 0 {
		return p.write("No upcoming events.\n")
	}
	var b strings.Builder
	for _, e := range events {
		title := e.Title
		if title == "" {
			title = "(No title)"
		}
		fmt.Fprintf(&b, "%s  %s", p.faint.Sprint(e.Start.Local().Format(dateLayout)), p.bold.Sprint(title))
		if e.Location != "" {
			fmt.Fprintf(&b, " @ %s", e.Location)
		}
		b.WriteString("\n")
	}
	return p.write(b.String())
}

func (p *Printer) Summary(summary report.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.bold.Sprintf("Summary (recent %d)", report.SummaryWindow))
	fmt.Fprintf(&b, "✅ %d   ❌ %d   🎯 %s\n",
		summary.Correct, summary.Wrong, p.levelColor(summary.Level).Sprint(summary.Level))
	fmt.Fprintf(&b, "Avg time: %ds · RT P50: %dms · Sessions: %d\n",
		summary.AvgSeconds, summary.RTP50Ms, summary.Sessions)
	return p.write(b.String())
}

func (p *Printer) Ledger(status reward.Status) error {
	var b strings.Builder
	if status.IsPremium && status.PremiumUntil != nil {
		fmt.Fprintf(&b, "%s until %s\n",
			p.green.Sprint("Premium active"),
			status.PremiumUntil.Local().Format(dateLayout))
	} else {
		fmt.Fprintf(&b, "%s\n", p.yellow.Sprint("Premium inactive"))
	}
	fmt.Fprintf(&b, "Progress: %d/%ds (%d%%), %ds remaining\n",
		status.ProgressSeconds,
		status.TargetSeconds,
		int(status.Progress01*100+0.5),
		status.RemainingSeconds,
	)
	return p.write(b.String())
}

func (p *Printer) Quota(used, limit int) error {
	remaining := max(0, limit-used)
	c := p.green
	if remaining == 0 {
		c = p.red
	}
	return p.write(fmt.Sprintf("AI queries today: %d/%d (%s remaining)\n", used, limit, c.Sprintf("%d", remaining)))
}

func (p *Printer) AssistantResult(result assistant.Result) error {
	if result.State == assistant.StateIdle {
		return p.write("Enter a question to search.\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.bold.Sprintf("Local matches (%d)", len(result.Hits)))
	if len(result.Hits) == 0 {
		b.WriteString("- (no local matches)\n")
	}
	for _, h := range result.Hits {
		fmt.Fprintf(&b, "- %s: %s\n", h.Title, p.faint.Sprint(h.Snippet))
	}
	b.WriteString("\n")

	switch result.State {
	case assistant.StateAnswered:
		fmt.Fprintf(&b, "%s\n%s\n", p.bold.Sprint("AI answer"), result.Answer)
	case assistant.StateFailed:
		fmt.Fprintf(&b, "%s %s\n", p.red.Sprint("❌"), result.Message)
	}
	return p.write(b.String())
}

func (p *Printer) DietPlan(item diet.CachedMeal) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", p.bold.Sprint(item.Meal), p.faint.Sprintf("(saved %s)", item.SavedAt.Local().Format(dateLayout)))
	b.WriteString(item.Text)
	b.WriteString("\n")
	return p.write(b.String())
}

func (p *Printer) Survey(result survey.Result) error {
	var b strings.Builder
	b.WriteString(result.Analysis)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s\n", p.green.Sprint(result.Cheer))
	return p.write(b.String())
}

func (p *Printer) levelColor(level focus.Level) *color.Color {
	switch level {
	case focus.LevelGood:
		return p.green
	case focus.LevelModerate:
		return p.cyan
	case focus.LevelMild, focus.LevelMedium:
		return p.yellow
	default:
		return p.red
	}
}

func (p *Printer) write(s string) error {
	if _, err := io.WriteString(p.w, s); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}
