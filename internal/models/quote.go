package models

import "time"

// Outcome identifies one leg of a 1X2 market.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// OutcomeQuote is one outcome of a matchup: the model's probability, the
// market price, and the values derived from them. ImpliedProb and Value are
// nil while the market has no price for the outcome.
type OutcomeQuote struct {
	Outcome     Outcome  `json:"outcome"`
	ModelProb   float64  `json:"model_prob"`
	Odds        *float64 `json:"odds"`
	ImpliedProb *float64 `json:"implied_prob"`
	Value       *float64 `json:"value"`
}

// MatchQuote is a single matchup's quoted market joined with the model's
// outcome probabilities. Quotes are transient: rebuilt from the feeds on
// every pass and never persisted.
type MatchQuote struct {
	EventID   string         `json:"event_id"`
	Date      string         `json:"date"` // YYYY-MM-DD
	StartTime time.Time      `json:"start_time"`
	HomeAbbr  string         `json:"home_abbr"`
	AwayAbbr  string         `json:"away_abbr"`
	Outcomes  []OutcomeQuote `json:"outcomes"`
}

// Complete reports whether the market quoted every outcome of the matchup.
// A matchup missing any price is never bet, regardless of how attractive the
// priced outcomes look.
func (q *MatchQuote) Complete() bool {
	if len(q.Outcomes) == 0 {
		return false
	}
	for _, o := range q.Outcomes {
		if o.Odds == nil {
			return false
		}
	}
	return true
}

// OutcomeByLabel returns the quote for a given outcome label.
func (q *MatchQuote) OutcomeByLabel(label Outcome) (OutcomeQuote, bool) {
	for _, o := range q.Outcomes {
		if o.Outcome == label {
			return o, true
		}
	}
	return OutcomeQuote{}, false
}

// MatchResult is a final score resolved by the results feed before the
// ledger is touched.
type MatchResult struct {
	EventID   string  `json:"event_id"`
	Date      string  `json:"date"`
	HomeAbbr  string  `json:"home_abbr"`
	AwayAbbr  string  `json:"away_abbr"`
	Finished  bool    `json:"finished"`
	Outcome   Outcome `json:"outcome"`
	HomeGoals int     `json:"home_goals"`
	AwayGoals int     `json:"away_goals"`
}
