package assistant

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/session"
)

const (
	DefaultSessionScanLimit = 80
	DefaultEventScanLimit   = 120
	DefaultMaxHits          = 12
	DefaultSummaryWindow    = 10

	eventTimeLayout = "Jan 2, 3:04 PM"
	untitledEvent   = "(No title)"
)

// Limits bound how much local data a single query scans and returns.
type Limits struct {
	SessionScan   int
	EventScan     int
	MaxHits       int
	SummaryWindow int
}

func DefaultLimits() Limits {
	return Limits{
		SessionScan:   DefaultSessionScanLimit,
		EventScan:     DefaultEventScanLimit,
		MaxHits:       DefaultMaxHits,
		SummaryWindow: DefaultSummaryWindow,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.SessionScan <= 0 {
		l.SessionScan = d.SessionScan
	}
	if l.EventScan <= 0 {
		l.EventScan = d.EventScan
	}
	if l.MaxHits <= 0 {
		l.MaxHits = d.MaxHits
	}
	if l.SummaryWindow <= 0 {
		l.SummaryWindow = d.SummaryWindow
	}
	return l
}

type HitKind string

const (
	HitSession HitKind = "session"
	HitEvent   HitKind = "event"
)

type Hit struct {
	Kind    HitKind   `json:"kind"`
	Title   string    `json:"title"`
	Snippet string    `json:"snippet"`
	Date    time.Time `json:"date"`
}

// SessionLine describes a session the way it is matched and shown.
func SessionLine(s session.GameSession) string {
	return fmt.Sprintf("%s ✅%d ❌%d %d%% %ds",
		s.Game, s.Correct, s.Wrong, s.AccuracyPercent(), int(math.Round(s.DurationSec)))
}

func EventLine(e calendar.Event) string {
	return fmt.Sprintf("%s • %s ~ %s", eventTitle(e), e.Start.Format(eventTimeLayout), e.End.Format(eventTimeLayout))
}

// LocalSearch matches the query case-insensitively against the most recent sessions and the first events.
// It has no side effects. Hits are newest first.
func LocalSearch(query string, sessions []session.GameSession, events []calendar.Event, limits Limits) []Hit {
	limits = limits.withDefaults()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []Hit
	for _, s := range session.Recent(sessions, limits.SessionScan) {
		line := SessionLine(s)
		if strings.Contains(strings.ToLower(line), q) || strings.Contains(strings.ToLower(s.Game), q) {
			hits = append(hits, Hit{
				Kind:    HitSession,
				Title:   "Session: " + s.Game,
				Snippet: line,
				Date:    s.Date,
			})
		}
	}

	for _, e := range events[:min(len(events), limits.EventScan)] {
		line := EventLine(e)
		if strings.Contains(strings.ToLower(line), q) || strings.Contains(strings.ToLower(e.Notes), q) {
			hits = append(hits, Hit{
				Kind:    HitEvent,
				Title:   "Calendar: " + eventTitle(e),
				Snippet: line,
				Date:    e.Start,
			})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return b.Date.Compare(a.Date)
	})
	if len(hits) > limits.MaxHits {
		hits = hits[:limits.MaxHits]
	}
	return hits
}

// Summary holds aggregate statistics over the most recent sessions of every game.
type Summary struct {
	Correct         int `json:"correct"`
	Wrong           int `json:"wrong"`
	AccuracyPercent int `json:"accuracyPercent"`
	RTP50Ms         int `json:"rtP50Ms"`
	Sessions        int `json:"sessions"`
}

func Summarize(sessions []session.GameSession, window int) Summary {
	recent := session.Recent(sessions, window)
	var summary Summary
	for _, s := range recent {
		summary.Correct += s.Correct
		summary.Wrong += s.Wrong
	}
	total := max(1, summary.Correct+summary.Wrong)
	summary.AccuracyPercent = int(math.Round(float64(summary.Correct) / float64(total) * 100))
	summary.RTP50Ms = int(session.MatchingRTStats(sessions, window).P50)
	summary.Sessions = len(recent)
	return summary
}

// BuildContext renders the summary and the hits as the data block of the prompt.
func BuildContext(hits []Hit, sessions []session.GameSession, window int) string {
	if window <= 0 {
		window = DefaultSummaryWindow
	}
	s := Summarize(sessions, window)

	var b strings.Builder
	fmt.Fprintf(&b, "[Summary recent%d]\n", window)
	fmt.Fprintf(&b, "correct=%d, wrong=%d, acc=%d%%, RT_P50=%dms, sessions=%d\n\n",
		s.Correct, s.Wrong, s.AccuracyPercent, s.RTP50Ms, s.Sessions)
	b.WriteString("[Matches]\n")
	if len(hits) == 0 {
		b.WriteString("- (no local matches)")
		return b.String()
	}
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", h.Title, h.Snippet)
	}
	return b.String()
}

func eventTitle(e calendar.Event) string {
	if strings.TrimSpace(e.Title) == "" {
		return untitledEvent
	}
	return e.Title
}
