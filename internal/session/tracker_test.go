package session

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/neuronest/internal/clock"
)

func TestMatchingTracker(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewManualClock(start)
	tracker := NewMatchingTracker(clk)

	clk.Advance(450 * time.Millisecond)
	tracker.RecordReaction()
	tracker.RecordMatch(true)

	tracker.MarkStimulus()
	clk.Advance(31 * time.Second)
	// outside the acceptance window
	tracker.RecordReaction()
	tracker.RecordMatch(false)

	tracker.MarkStimulus()
	clk.Advance(700 * time.Millisecond)
	tracker.RecordReaction()
	tracker.RecordMatch(true)
	tracker.SetLevel(2)

	tracker.Finish()
	finishedAt := clk.Now()
	clk.Advance(time.Minute)
	tracker.Finish()
	tracker.RecordMatch(true)

	assert.Equal(t, 32, tracker.Elapsed())

	s := tracker.Session()
	assert.Equal(t, GameMatching, s.Game)
	assert.Equal(t, 2, s.Correct)
	assert.Equal(t, 1, s.Wrong)
	assert.Equal(t, 2, s.LevelReached)
	assert.Equal(t, 67, s.Score)
	assert.Equal(t, float64(32), s.DurationSec)
	assert.Equal(t, finishedAt, s.Date)
	assert.Equal(t, []float64{450, 700}, s.ReactionTimesMs)
}

func TestNumberMemoryGame(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewManualClock(start)
	game := NewNumberMemoryGame(clk, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, 1, game.Level())
	assert.Equal(t, 1020*time.Millisecond, game.DisplayDuration())

	n := game.NextNumber()
	require.Len(t, n, 1)
	assert.NotEqual(t, "0", n)
	assert.True(t, game.Submit(n))
	assert.Equal(t, 2, game.Level())

	n = game.NextNumber()
	require.Len(t, n, 2)
	assert.True(t, game.Submit(" "+n+" "))
	assert.Equal(t, 3, game.Level())

	n = game.NextNumber()
	require.Len(t, n, 3)
	assert.False(t, game.Submit(strings.Repeat("x", 3)))
	assert.Equal(t, 2, game.Level())
	assert.False(t, game.Over())

	game.NextNumber()
	assert.False(t, game.Submit(""))
	game.NextNumber()
	assert.False(t, game.Submit(""))
	assert.True(t, game.Over())
	assert.Equal(t, 1, game.Level())

	// no more rounds after game over
	game.NextNumber()
	assert.False(t, game.Submit("1"))

	assert.InDelta(t, (1+2+3+2+1)/5.0, game.AverageSpan(), 1e-9)

	clk.Advance(42 * time.Second)
	s := game.Session()
	assert.Equal(t, GameNumberMemory, s.Game)
	assert.Equal(t, 2, s.Correct)
	assert.Equal(t, 3, s.Wrong)
	assert.Equal(t, 2, s.LevelReached)
	assert.Equal(t, 2, s.Score)
	assert.Equal(t, float64(42), s.DurationSec)
}

func TestNumberMemoryGame_DisplayDurationCap(t *testing.T) {
	clk := clock.NewManualClock(time.Now())
	game := NewNumberMemoryGame(clk, rand.New(rand.NewPCG(3, 4)))
	for range 20 {
		game.Submit(game.NextNumber())
	}
	assert.Equal(t, 2600*time.Millisecond, game.DisplayDuration())
}
