// Package service wires selection, the ledger and the portfolio views into
// the operations exposed to the CLI and API layers.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/ledger"
	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
	"github.com/yourusername/value-tracker/internal/portfolio"
	"github.com/yourusername/value-tracker/internal/selector"
	"github.com/yourusername/value-tracker/internal/valuation"
)

// QuoteSource supplies matchup quotes (market odds joined with model
// probabilities) for the next daysAhead days. Implemented by the feed layer;
// opaque to the core.
type QuoteSource interface {
	Quotes(ctx context.Context, daysAhead int) ([]models.MatchQuote, error)
}

// ResultSource supplies final results for the given dates. Results for
// unfinished matchups come back with Finished=false and are left alone.
type ResultSource interface {
	Results(ctx context.Context, dates []string) ([]models.MatchResult, error)
}

// Policy configures one update pass.
type Policy struct {
	DaysAhead   int
	StakePerBet float64
	MinValue    float64
	DayCap      int
	// ValueGames short-circuits the quote feed with quotes the caller has
	// already fetched.
	ValueGames []models.MatchQuote
}

// DefaultPolicy mirrors the scheduled daily run.
func DefaultPolicy() Policy {
	return Policy{
		DaysAhead:   3,
		StakePerBet: 100,
		MinValue:    0.01,
		DayCap:      1,
	}
}

// Validate rejects configurations the ledger must never run under.
func (p Policy) Validate() error {
	if p.StakePerBet <= 0 {
		return fmt.Errorf("%w: stake_per_bet must be positive, got %v", models.ErrInvalidPolicy, p.StakePerBet)
	}
	if p.MinValue < 0 {
		return fmt.Errorf("%w: min_value must not be negative, got %v", models.ErrInvalidPolicy, p.MinValue)
	}
	if p.DaysAhead < 0 {
		return fmt.Errorf("%w: days_ahead must not be negative, got %v", models.ErrInvalidPolicy, p.DaysAhead)
	}
	return nil
}

// Portfolio is the report payload handed to the API and CLI layers.
type Portfolio struct {
	Timeseries []portfolio.Point  `json:"timeseries"`
	Summary    portfolio.Summary  `json:"summary"`
	Bets       []models.BetRecord `json:"bets"`
	Created    int                `json:"created"`
	Settled    int                `json:"settled"`
}

// Tracker orchestrates the value-bet pipeline.
type Tracker struct {
	ledger  *ledger.Ledger
	quotes  QuoteSource
	results ResultSource
	log     *logrus.Logger
	now     func() time.Time
}

// NewTracker creates the tracker service. quotes and results may be nil when
// every caller supplies prefetched data.
func NewTracker(l *ledger.Ledger, quotes QuoteSource, results ResultSource, log *logrus.Logger) *Tracker {
	if log == nil {
		log = logrus.New()
	}
	return &Tracker{
		ledger:  l,
		quotes:  quotes,
		results: results,
		log:     log,
		now:     time.Now,
	}
}

// SelectValueBets enriches the quotes and returns the candidates the policy
// qualifies. It touches nothing persistent.
func (t *Tracker) SelectValueBets(quotes []models.MatchQuote, policy Policy) ([]models.BetRecord, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	sel := selector.New(policy.MinValue, policy.StakePerBet, policy.DayCap, t.log)
	return sel.Select(quotes), nil
}

// ValueReport enriches quotes with implied probabilities and per-outcome EV
// for display. The report never feeds back into selection.
func (t *Tracker) ValueReport(ctx context.Context, policy Policy) ([]models.MatchQuote, error) {
	quotes, err := t.fetchQuotes(ctx, policy)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		valuation.Enrich(&quotes[i])
	}
	return quotes, nil
}

// UpdateLedger runs one full pass: settle what has finished, select and
// record new bets, persist, and report the refreshed portfolio. Incomplete
// markets, duplicate candidates and unresolved results are all silent;
// only persistence failures and invalid policy surface as errors.
func (t *Tracker) UpdateLedger(ctx context.Context, policy Policy) (*Portfolio, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	started := t.now()
	log := t.log.WithField("run_id", runID.String())

	quotes, err := t.fetchQuotes(ctx, policy)
	if err != nil {
		return nil, err
	}

	sel := selector.New(policy.MinValue, policy.StakePerBet, policy.DayCap, t.log)
	candidates := sel.Select(quotes)

	// Results are resolved up front; the ledger itself never goes to the
	// network.
	results, err := t.fetchResults(ctx)
	if err != nil {
		return nil, err
	}

	res, err := t.ledger.Update(ctx, candidates, results)
	if err != nil {
		return nil, err
	}

	metrics.UpdatePassesTotal.Inc()
	metrics.UpdatePassDuration.Observe(t.now().Sub(started).Seconds())

	p := t.buildPortfolio(res.History)
	p.Created = res.Created
	p.Settled = res.Settled

	log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"created":    res.Created,
		"settled":    res.Settled,
	}).Info("Update pass finished")

	return p, nil
}

// GetPortfolio rebuilds the timeseries and summary from current ledger
// state. Read only.
func (t *Tracker) GetPortfolio(ctx context.Context) (*Portfolio, error) {
	history, err := t.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	return t.buildPortfolio(history), nil
}

func (t *Tracker) buildPortfolio(history []models.BetRecord) *Portfolio {
	summary := portfolio.Summarize(history)
	metrics.OpenBets.Set(float64(summary.OpenBets))
	metrics.TotalStaked.Set(summary.TotalStaked)
	metrics.RealizedProfit.Set(summary.Profit)

	return &Portfolio{
		Timeseries: portfolio.Timeseries(history),
		Summary:    summary,
		Bets:       history,
	}
}

func (t *Tracker) fetchQuotes(ctx context.Context, policy Policy) ([]models.MatchQuote, error) {
	if policy.ValueGames != nil {
		return policy.ValueGames, nil
	}
	if t.quotes == nil {
		return nil, nil
	}
	quotes, err := t.quotes.Quotes(ctx, policy.DaysAhead)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return quotes, nil
}

// fetchResults asks the results feed about every date that still has a
// pending bet and is not in the future.
func (t *Tracker) fetchResults(ctx context.Context) ([]models.MatchResult, error) {
	if t.results == nil {
		return nil, nil
	}

	history, err := t.ledger.All(ctx)
	if err != nil {
		return nil, err
	}

	today := t.now().Format("2006-01-02")
	seen := make(map[string]struct{})
	var dates []string
	for i := range history {
		b := &history[i]
		if b.Status != models.BetStatusPending || b.Date == "" || b.Date > today {
			continue
		}
		if _, ok := seen[b.Date]; !ok {
			seen[b.Date] = struct{}{}
			dates = append(dates, b.Date)
		}
	}
	if len(dates) == 0 {
		return nil, nil
	}

	results, err := t.results.Results(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	return results, nil
}
