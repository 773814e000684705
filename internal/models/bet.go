package models

import "time"

// BetStatus represents the lifecycle state of a recorded bet.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

// BetKey uniquely identifies a ledger entry. The ledger holds at most one
// record per matchup per day.
type BetKey struct {
	Date    string
	EventID string
}

// BetRecord is the ledger's unit of truth: one placed bet, created once at
// selection time and mutated exactly once at settlement. Odds, model
// probability, implied probability and value are frozen at placement; they
// are never recomputed from later market data.
type BetRecord struct {
	Date          string    `json:"date"`
	EventID       string    `json:"event_id"`
	StartTime     time.Time `json:"start_time"`
	HomeAbbr      string    `json:"home_abbr"`
	AwayAbbr      string    `json:"away_abbr"`
	Selection     Outcome   `json:"selection"`
	Odds          float64   `json:"odds"`
	ModelProb     float64   `json:"model_prob"`
	ImpliedProb   float64   `json:"implied_prob"`
	Value         float64   `json:"value"`
	Stake         float64   `json:"stake"`
	Status        BetStatus `json:"status"`
	Payout        float64   `json:"payout"`
	Profit        float64   `json:"profit"`
	ActualOutcome Outcome   `json:"actual_outcome,omitempty"`
}

// Key returns the record's ledger identity.
func (b *BetRecord) Key() BetKey {
	return BetKey{Date: b.Date, EventID: b.EventID}
}

// IsSettled reports whether the bet has reached a terminal status.
func (b *BetRecord) IsSettled() bool {
	return b.Status == BetStatusWon || b.Status == BetStatusLost
}

// ROI returns profit relative to stake for a settled bet, 0 otherwise.
func (b *BetRecord) ROI() float64 {
	if !b.IsSettled() || b.Stake == 0 {
		return 0
	}
	return b.Profit / b.Stake
}
