package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-tracker/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func quote(eventID, date string, start time.Time, home, draw, away *float64, pHome, pDraw, pAway float64) models.MatchQuote {
	return models.MatchQuote{
		EventID:   eventID,
		Date:      date,
		StartTime: start,
		HomeAbbr:  "TOR",
		AwayAbbr:  "BOS",
		Outcomes: []models.OutcomeQuote{
			{Outcome: models.OutcomeHome, ModelProb: pHome, Odds: home},
			{Outcome: models.OutcomeDraw, ModelProb: pDraw, Odds: draw},
			{Outcome: models.OutcomeAway, ModelProb: pAway, Odds: away},
		},
	}
}

func TestPickBestOutcome(t *testing.T) {
	s := New(0.01, 100, 1, nil)

	// Home EV: 0.444*3.44-1 = 0.52736, the clear best of the market.
	q := quote("12345", "2026-01-15", time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
		floatPtr(3.44), floatPtr(4.2), floatPtr(1.9),
		0.444, 0.21, 0.346)

	bet, ok := s.Pick(q)
	require.True(t, ok)
	assert.Equal(t, models.OutcomeHome, bet.Selection)
	assert.InDelta(t, 0.52736, bet.Value, 1e-9)
	assert.Equal(t, 3.44, bet.Odds)
	assert.Equal(t, 0.444, bet.ModelProb)
	assert.InDelta(t, 1/3.44, bet.ImpliedProb, 1e-12)
	assert.Equal(t, 100.0, bet.Stake)
	assert.Equal(t, models.BetStatusPending, bet.Status)
	assert.Equal(t, "12345", bet.EventID)
	assert.Equal(t, "2026-01-15", bet.Date)
}

func TestPickRejectsIncompleteMarket(t *testing.T) {
	s := New(0.01, 100, 1, nil)

	// Home leg is hugely attractive, but the draw has no price: the whole
	// matchup is out.
	q := quote("12345", "2026-01-15", time.Time{},
		floatPtr(5.0), nil, floatPtr(1.5),
		0.5, 0.2, 0.3)

	_, ok := s.Pick(q)
	assert.False(t, ok)
}

func TestPickRejectsEmptyMarket(t *testing.T) {
	s := New(0.01, 100, 1, nil)
	_, ok := s.Pick(models.MatchQuote{EventID: "1", Date: "2026-01-15"})
	assert.False(t, ok)
}

func TestPickRejectsBelowThreshold(t *testing.T) {
	// Best EV here is 0.5*2.02-1 = 0.01, equal to the floor. The floor must
	// be strictly exceeded.
	s := New(0.01, 100, 1, nil)
	q := quote("12345", "2026-01-15", time.Time{},
		floatPtr(2.02), floatPtr(3.0), floatPtr(3.0),
		0.5, 0.1, 0.1)

	_, ok := s.Pick(q)
	assert.False(t, ok)
}

func TestPickRejectsNegativeEV(t *testing.T) {
	s := New(0, 100, 1, nil)
	q := quote("12345", "2026-01-15", time.Time{},
		floatPtr(1.5), floatPtr(3.0), floatPtr(4.0),
		0.5, 0.2, 0.2)

	_, ok := s.Pick(q)
	assert.False(t, ok)
}

func TestPickTieKeepsCanonicalOrder(t *testing.T) {
	s := New(0.01, 100, 1, nil)

	// Home and away tie exactly on EV 0.2; home comes first in canonical
	// order and wins the tie.
	q := quote("12345", "2026-01-15", time.Time{},
		floatPtr(2.4), floatPtr(10.0), floatPtr(2.4),
		0.5, 0.01, 0.5)

	bet, ok := s.Pick(q)
	require.True(t, ok)
	assert.Equal(t, models.OutcomeHome, bet.Selection)
}

func TestSelectDayCapOne(t *testing.T) {
	s := New(0.01, 100, 1, nil)
	day := "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)

	quotes := []models.MatchQuote{
		// EV 0.2
		quote("aaa", day, start, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		// EV 0.5, the day's best
		quote("bbb", day, start.Add(time.Hour), floatPtr(3.0), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
	}

	picks := s.Select(quotes)
	require.Len(t, picks, 1)
	assert.Equal(t, "bbb", picks[0].EventID)
}

func TestSelectDayCapZeroTakesAll(t *testing.T) {
	s := New(0.01, 100, 0, nil)
	day := "2026-01-15"

	quotes := []models.MatchQuote{
		quote("aaa", day, time.Time{}, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		quote("bbb", day, time.Time{}, floatPtr(3.0), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
	}

	picks := s.Select(quotes)
	require.Len(t, picks, 2)
	// Ordered by EV descending.
	assert.Equal(t, "bbb", picks[0].EventID)
	assert.Equal(t, "aaa", picks[1].EventID)
}

func TestSelectCapsPerDayIndependently(t *testing.T) {
	s := New(0.01, 100, 1, nil)

	quotes := []models.MatchQuote{
		quote("day1-a", "2026-01-15", time.Time{}, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		quote("day1-b", "2026-01-15", time.Time{}, floatPtr(3.0), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		quote("day2-a", "2026-01-16", time.Time{}, floatPtr(2.6), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
	}

	picks := s.Select(quotes)
	require.Len(t, picks, 2)

	got := map[string]bool{}
	for _, p := range picks {
		got[p.EventID] = true
	}
	assert.True(t, got["day1-b"])
	assert.True(t, got["day2-a"])
}

func TestSelectTieBreakDeterministic(t *testing.T) {
	s := New(0.01, 100, 1, nil)
	day := "2026-01-15"
	early := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	late := time.Date(2026, 1, 15, 21, 0, 0, 0, time.UTC)

	// Identical EV everywhere: the earlier start wins; on equal starts the
	// lexically smaller event id wins.
	quotes := []models.MatchQuote{
		quote("zzz", day, late, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		quote("mmm", day, early, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
		quote("aaa", day, late, floatPtr(2.4), floatPtr(8.0), floatPtr(3.0), 0.5, 0.1, 0.2),
	}

	for run := 0; run < 5; run++ {
		picks := s.Select(quotes)
		require.Len(t, picks, 1)
		assert.Equal(t, "mmm", picks[0].EventID)
	}
}
