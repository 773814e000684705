// Package valuation holds the pure value formulas shared by selection,
// storage and reporting. Every call site derives implied probability and
// expected value through this package so the numbers on a stored bet are the
// exact numbers that selected it.
package valuation

import "github.com/yourusername/value-tracker/internal/models"

// ImpliedProbability returns 1/odds for a present, positive price and nil
// otherwise. The probability is taken for the outcome in isolation: a missing
// price elsewhere in the market must not distort it, so no normalization
// across the outcome set ever happens here.
func ImpliedProbability(odds *float64) *float64 {
	if odds == nil || *odds <= 0 {
		return nil
	}
	p := 1 / *odds
	return &p
}

// ExpectedValue returns model_prob*odds - 1, the expected profit per unit
// stake, or nil when the market has no price for the outcome.
func ExpectedValue(modelProb float64, odds *float64) *float64 {
	if odds == nil {
		return nil
	}
	ev := modelProb**odds - 1
	return &ev
}

// Edge returns model_prob - implied_prob. Display only; selection never
// consults it.
func Edge(modelProb float64, implied *float64) *float64 {
	if implied == nil {
		return nil
	}
	e := modelProb - *implied
	return &e
}

// Enrich fills the derived fields of every outcome in the quote from its raw
// model probability and odds.
func Enrich(q *models.MatchQuote) {
	for i := range q.Outcomes {
		o := &q.Outcomes[i]
		o.ImpliedProb = ImpliedProbability(o.Odds)
		o.Value = ExpectedValue(o.ModelProb, o.Odds)
	}
}
