package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-tracker/internal/models"
)

func bet(date string, status models.BetStatus, stake, payout, profit float64) models.BetRecord {
	return models.BetRecord{
		Date:    date,
		EventID: date + "-" + string(status),
		Stake:   stake,
		Status:  status,
		Payout:  payout,
		Profit:  profit,
	}
}

func TestTimeseriesEmpty(t *testing.T) {
	assert.Empty(t, Timeseries(nil))
}

func TestTimeseriesCumulative(t *testing.T) {
	bets := []models.BetRecord{
		bet("2026-01-15", models.BetStatusWon, 100, 344, 244),
		bet("2026-01-16", models.BetStatusLost, 100, 0, -100),
		bet("2026-01-17", models.BetStatusPending, 100, 0, 0),
	}

	series := Timeseries(bets)
	require.Len(t, series, 3)

	// Date ascending.
	assert.Equal(t, "2026-01-15", series[0].Date)
	assert.Equal(t, "2026-01-16", series[1].Date)
	assert.Equal(t, "2026-01-17", series[2].Date)

	// Day one: single won bet.
	assert.Equal(t, 100.0, series[0].Invested)
	assert.Equal(t, 344.0, series[0].SettledReturn)
	assert.Equal(t, 244.0, series[0].Profit)
	assert.Equal(t, 0, series[0].OpenBets)

	// Day two adds the loss.
	assert.Equal(t, 200.0, series[1].Invested)
	assert.Equal(t, 344.0, series[1].SettledReturn)
	assert.Equal(t, 144.0, series[1].Profit)
	assert.Equal(t, 2, series[1].SettledBets)

	// Day three: open bet carries its stake at face value.
	assert.Equal(t, 300.0, series[2].Invested)
	assert.Equal(t, 100.0, series[2].OpenStake)
	assert.Equal(t, 1, series[2].OpenBets)
	assert.Equal(t, 444.0, series[2].Value) // 344 settled + 100 open stake
	assert.Equal(t, 144.0, series[2].Profit)
}

func TestTimeseriesUnsortedInput(t *testing.T) {
	bets := []models.BetRecord{
		bet("2026-01-17", models.BetStatusPending, 100, 0, 0),
		bet("2026-01-15", models.BetStatusWon, 100, 200, 100),
	}

	series := Timeseries(bets)
	require.Len(t, series, 2)
	assert.Equal(t, "2026-01-15", series[0].Date)
	assert.Equal(t, "2026-01-17", series[1].Date)
	// The later bet must not leak into the earlier point.
	assert.Equal(t, 100.0, series[0].Invested)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalBets)
	assert.Zero(t, s.ROI)
	assert.Zero(t, s.WinRate)
}

func TestSummarize(t *testing.T) {
	bets := []models.BetRecord{
		bet("2026-01-15", models.BetStatusWon, 100, 344, 244),
		bet("2026-01-16", models.BetStatusLost, 100, 0, -100),
		bet("2026-01-17", models.BetStatusPending, 100, 0, 0),
	}

	s := Summarize(bets)
	assert.Equal(t, 3, s.TotalBets)
	assert.Equal(t, 1, s.OpenBets)
	assert.Equal(t, 1, s.Won)
	assert.Equal(t, 1, s.Lost)
	assert.Equal(t, 300.0, s.TotalStaked)
	assert.Equal(t, 344.0, s.SettledReturn)
	assert.Equal(t, 444.0, s.CurrentValue)
	assert.Equal(t, 144.0, s.Profit)
	assert.InDelta(t, 144.0/300.0, s.ROI, 1e-9)
	assert.InDelta(t, 0.5, s.WinRate, 1e-9)
}

// Win rate counts settled bets only; a ledger of pure pending bets has no
// winrate and no ROI contribution beyond zero profit.
func TestSummarizeAllPending(t *testing.T) {
	bets := []models.BetRecord{
		bet("2026-01-15", models.BetStatusPending, 100, 0, 0),
		bet("2026-01-16", models.BetStatusPending, 100, 0, 0),
	}

	s := Summarize(bets)
	assert.Equal(t, 2, s.OpenBets)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.ROI)
	assert.Equal(t, 200.0, s.CurrentValue)
}

func TestSummarizeProfitConsistency(t *testing.T) {
	bets := []models.BetRecord{
		bet("2026-01-15", models.BetStatusWon, 50, 101.5, 51.5),
		bet("2026-01-15", models.BetStatusLost, 50, 0, -50),
	}

	s := Summarize(bets)
	// profit == settled return - settled stake
	assert.InDelta(t, s.SettledReturn-100, s.Profit, 1e-9)
}
