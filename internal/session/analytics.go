package session

import (
	"strings"
	"time"
)

// Recent returns the last n sessions in insertion order.
func Recent(sessions []GameSession, n int) []GameSession {
	if n <= 0 {
		return nil
	}
	if len(sessions) <= n {
		return sessions
	}
	return sessions[len(sessions)-n:]
}

// FilterGame keeps the sessions whose game equals game exactly.
func FilterGame(sessions []GameSession, game string) []GameSession {
	var filtered []GameSession
	for _, s := range sessions {
		if s.Game == game {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func TotalScore(sessions []GameSession) int {
	total := 0
	for _, s := range sessions {
		total += s.Score
	}
	return total
}

func TotalScoreLast(sessions []GameSession, n int) int {
	return TotalScore(Recent(sessions, n))
}

type DailyPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// DailyScorePoints sums scores per local calendar day for the last days days, oldest first.
// Days are taken in now's location; days without sessions have a zero score.
func DailyScorePoints(sessions []GameSession, days int, now time.Time) []DailyPoint {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	today := startOfDay(now)

	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-(days-1))
		points[i] = DailyPoint{Date: day}
		index[day.Format(time.DateOnly)] = i
	}

	for _, s := range sessions {
		key := s.Date.In(loc).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			points[i].Score += s.Score
		}
	}
	return points
}

// MatchingRTStats computes reaction-time percentiles over the last n matching sessions.
func MatchingRTStats(sessions []GameSession, n int) RTStats {
	var matching []GameSession
	for _, s := range sessions {
		if strings.ToLower(s.Game) == GameMatching {
			matching = append(matching, s)
		}
	}

	var samples []float64
	for _, s := range Recent(matching, n) {
		samples = append(samples, s.ReactionTimesMs...)
	}
	return Percentiles(samples)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
