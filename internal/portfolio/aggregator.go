// Package portfolio derives performance views from ledger contents. All
// functions are pure: they recompute from the records they are handed and
// never mutate the ledger.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/value-tracker/internal/models"
)

// Point is one date on the performance timeseries. Invested, realized
// return and profit are cumulative through the date; open figures count
// bets placed on or before the date that are still pending.
type Point struct {
	Date          string  `json:"date"`
	Invested      float64 `json:"invested"`
	Value         float64 `json:"value"`
	SettledReturn float64 `json:"settled_return"`
	Profit        float64 `json:"profit"`
	OpenStake     float64 `json:"open_stake"`
	OpenBets      int     `json:"open_bets"`
	SettledBets   int     `json:"settled_bets"`
}

// Summary aggregates the whole ledger.
type Summary struct {
	TotalBets     int     `json:"total_bets"`
	OpenBets      int     `json:"open_bets"`
	Won           int     `json:"won"`
	Lost          int     `json:"lost"`
	TotalStaked   float64 `json:"total_staked"`
	SettledReturn float64 `json:"settled_return"`
	CurrentValue  float64 `json:"current_value"`
	Profit        float64 `json:"profit"`
	ROI           float64 `json:"roi"`
	WinRate       float64 `json:"win_rate"`
}

// Timeseries builds the date-ascending performance series. Profit is
// attributed to the bet's placement date; an open bet carries its stake at
// face value until it settles.
func Timeseries(bets []models.BetRecord) []Point {
	dates := make([]string, 0, len(bets))
	seen := make(map[string]struct{})
	for i := range bets {
		d := bets[i].Date
		if d == "" {
			continue
		}
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	series := make([]Point, 0, len(dates))
	for _, d := range dates {
		var invested, settledReturn, profit, openStake float64
		var openBets, settledBets int
		for i := range bets {
			b := &bets[i]
			if b.Date == "" || b.Date > d {
				continue
			}
			invested += b.Stake
			if b.IsSettled() {
				settledReturn += b.Payout
				profit += b.Profit
				settledBets++
			} else {
				openStake += b.Stake
				openBets++
			}
		}
		series = append(series, Point{
			Date:          d,
			Invested:      round2(invested),
			Value:         round2(settledReturn + openStake),
			SettledReturn: round2(settledReturn),
			Profit:        round2(profit),
			OpenStake:     round2(openStake),
			OpenBets:      openBets,
			SettledBets:   settledBets,
		})
	}
	return series
}

// Summarize aggregates totals, ROI and win rate. ROI is realized profit over
// total staked, 0 when nothing has been staked; win rate counts settled bets
// only, 0 when nothing has settled.
func Summarize(bets []models.BetRecord) Summary {
	s := Summary{TotalBets: len(bets)}
	var openStake float64
	for i := range bets {
		b := &bets[i]
		s.TotalStaked += b.Stake
		switch b.Status {
		case models.BetStatusWon:
			s.Won++
			s.SettledReturn += b.Payout
			s.Profit += b.Profit
		case models.BetStatusLost:
			s.Lost++
			s.Profit += b.Profit
		default:
			s.OpenBets++
			openStake += b.Stake
		}
	}

	s.CurrentValue = round2(s.SettledReturn + openStake)
	if s.TotalStaked > 0 {
		s.ROI = s.Profit / s.TotalStaked
	}
	if settled := s.Won + s.Lost; settled > 0 {
		s.WinRate = float64(s.Won) / float64(settled)
	}
	s.TotalStaked = round2(s.TotalStaked)
	s.SettledReturn = round2(s.SettledReturn)
	s.Profit = round2(s.Profit)
	return s
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
