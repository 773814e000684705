// Package selector turns enriched matchup quotes into bet candidates.
package selector

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/models"
	"github.com/yourusername/value-tracker/internal/valuation"
)

// Selector applies the value rules to a day's quotes. MinValue is the EV
// floor a pick must strictly exceed; DayCap limits how many matchups may be
// bet per calendar day (0 means all qualifying matchups).
type Selector struct {
	MinValue    float64
	StakePerBet float64
	DayCap      int

	log *logrus.Logger
}

// New creates a selector with the given policy values.
func New(minValue, stakePerBet float64, dayCap int, log *logrus.Logger) *Selector {
	if log == nil {
		log = logrus.New()
	}
	return &Selector{
		MinValue:    minValue,
		StakePerBet: stakePerBet,
		DayCap:      dayCap,
		log:         log,
	}
}

// Pick evaluates a single matchup and returns the candidate record for its
// best outcome, or ok=false when the matchup does not qualify. Incomplete
// markets are rejected outright: a missing price anywhere in the market
// disqualifies even outcomes that are priced.
func (s *Selector) Pick(q models.MatchQuote) (models.BetRecord, bool) {
	if !q.Complete() {
		s.log.WithFields(logrus.Fields{
			"event_id": q.EventID,
			"date":     q.Date,
		}).Debug("Skipping matchup with incomplete market")
		return models.BetRecord{}, false
	}

	valuation.Enrich(&q)

	best := -1
	for i, o := range q.Outcomes {
		if o.Value == nil {
			continue
		}
		// Strictly greater: on an exact EV tie the earlier outcome in
		// canonical home/draw/away order is kept.
		if best < 0 || *o.Value > *q.Outcomes[best].Value {
			best = i
		}
	}
	if best < 0 {
		return models.BetRecord{}, false
	}

	pick := q.Outcomes[best]
	if *pick.Value <= 0 || *pick.Value <= s.MinValue {
		return models.BetRecord{}, false
	}

	implied := 0.0
	if pick.ImpliedProb != nil {
		implied = *pick.ImpliedProb
	}

	return models.BetRecord{
		Date:        q.Date,
		EventID:     q.EventID,
		StartTime:   q.StartTime,
		HomeAbbr:    q.HomeAbbr,
		AwayAbbr:    q.AwayAbbr,
		Selection:   pick.Outcome,
		Odds:        *pick.Odds,
		ModelProb:   pick.ModelProb,
		ImpliedProb: implied,
		Value:       *pick.Value,
		Stake:       s.StakePerBet,
		Status:      models.BetStatusPending,
		Payout:      0,
		Profit:      0,
	}, true
}

// Select evaluates a batch of quotes and applies the day-cap policy. With a
// cap of one, a day's single best candidate wins; ties on EV resolve to the
// earliest start time, then the lexically smallest event id, so repeated runs
// over the same data always produce the same picks.
func (s *Selector) Select(quotes []models.MatchQuote) []models.BetRecord {
	var candidates []models.BetRecord
	for _, q := range quotes {
		if c, ok := s.Pick(q); ok {
			candidates = append(candidates, c)
		}
	}
	if s.DayCap <= 0 {
		sortCandidates(candidates)
		return candidates
	}

	byDay := make(map[string][]models.BetRecord)
	for _, c := range candidates {
		byDay[c.Date] = append(byDay[c.Date], c)
	}

	var capped []models.BetRecord
	for _, day := range byDay {
		sortCandidates(day)
		n := s.DayCap
		if n > len(day) {
			n = len(day)
		}
		capped = append(capped, day[:n]...)
	}
	sortCandidates(capped)
	return capped
}

// sortCandidates orders by EV descending, then start time, then event id.
func sortCandidates(cs []models.BetRecord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Value != cs[j].Value {
			return cs[i].Value > cs[j].Value
		}
		if !cs[i].StartTime.Equal(cs[j].StartTime) {
			return cs[i].StartTime.Before(cs[j].StartTime)
		}
		return cs[i].EventID < cs[j].EventID
	})
}
