package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
)

// Locker is implemented by stores that need scoped exclusive acquisition
// around a read-modify-write pass, such as a ledger file shared between
// processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Ledger is the bet ledger: the sole gate through which records are created
// and settled. All mutation happens inside Update; nothing else writes to
// the store.
type Ledger struct {
	store Store
	log   *logrus.Logger
}

// New creates a ledger over the given store.
func New(store Store, log *logrus.Logger) *Ledger {
	if log == nil {
		log = logrus.New()
	}
	return &Ledger{store: store, log: log}
}

// UpdateResult summarizes one update pass.
type UpdateResult struct {
	History []models.BetRecord
	Created int
	Settled int
}

// All returns the current ledger contents.
func (l *Ledger) All(ctx context.Context) ([]models.BetRecord, error) {
	return l.store.Load(ctx)
}

// Ping proxies to the store for health checks.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Update runs one atomic pass: load the full ledger, settle what has
// resolved, record the new candidates, and persist the whole updated state.
// A failure before the final write leaves the prior state authoritative.
// Settlement runs before recording so a candidate for an already-finished
// matchup is still recorded as pending rather than guessed at.
func (l *Ledger) Update(ctx context.Context, candidates []models.BetRecord, results []models.MatchResult) (UpdateResult, error) {
	if locker, ok := l.store.(Locker); ok {
		release, err := locker.Acquire(ctx)
		if err != nil {
			return UpdateResult{}, err
		}
		defer release()
	}

	history, err := l.store.Load(ctx)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	settled := l.settle(history, results)
	history, created := l.recordNewBets(history, candidates)

	if err := l.store.Replace(ctx, history); err != nil {
		metrics.LedgerPersistFailuresTotal.Inc()
		return UpdateResult{}, fmt.Errorf("failed to persist ledger: %w", err)
	}

	l.log.WithFields(logrus.Fields{
		"created": created,
		"settled": settled,
		"total":   len(history),
	}).Info("Ledger pass complete")

	return UpdateResult{History: history, Created: created, Settled: settled}, nil
}

// recordNewBets appends candidates whose (date, event_id) key is not yet in
// the ledger. Re-running the same selection leaves the ledger unchanged; a
// duplicate is a silent skip, not an error.
func (l *Ledger) recordNewBets(history []models.BetRecord, candidates []models.BetRecord) ([]models.BetRecord, int) {
	existing := make(map[models.BetKey]struct{}, len(history))
	for i := range history {
		existing[history[i].Key()] = struct{}{}
	}

	created := 0
	for _, c := range candidates {
		if _, dup := existing[c.Key()]; dup {
			l.log.WithFields(logrus.Fields{
				"event_id": c.EventID,
				"date":     c.Date,
			}).Debug("Skipping duplicate bet")
			continue
		}
		c.Status = models.BetStatusPending
		c.Payout = 0
		c.Profit = 0
		c.ActualOutcome = ""
		history = append(history, c)
		existing[c.Key()] = struct{}{}
		created++
		metrics.BetsRecordedTotal.Inc()
	}
	return history, created
}

// settle resolves pending records against the supplied results. Settlement
// is monotonic: a record that has reached won or lost is never revisited,
// and a pending record with no finished result stays pending untouched.
func (l *Ledger) settle(history []models.BetRecord, results []models.MatchResult) int {
	index := indexResults(results)
	settled := 0

	for i := range history {
		b := &history[i]
		if b.Status != models.BetStatusPending {
			continue
		}

		res, ok := lookupResult(index, b)
		if !ok || !res.Finished {
			continue
		}

		b.ActualOutcome = res.Outcome
		if res.Outcome == b.Selection {
			payout := decimal.NewFromFloat(b.Stake).Mul(decimal.NewFromFloat(b.Odds)).Round(2)
			b.Payout, _ = payout.Float64()
			b.Profit, _ = payout.Sub(decimal.NewFromFloat(b.Stake)).Float64()
			b.Status = models.BetStatusWon
		} else {
			b.Payout = 0
			b.Profit = -b.Stake
			b.Status = models.BetStatusLost
		}
		settled++
		metrics.BetsSettledTotal.WithLabelValues(string(b.Status)).Inc()
	}
	return settled
}

type resultIndex struct {
	byEvent map[string]models.MatchResult
	byMatch map[string]models.MatchResult
}

func indexResults(results []models.MatchResult) resultIndex {
	idx := resultIndex{
		byEvent: make(map[string]models.MatchResult, len(results)),
		byMatch: make(map[string]models.MatchResult, len(results)),
	}
	for _, r := range results {
		if r.EventID != "" {
			idx.byEvent[r.EventID] = r
		}
		idx.byMatch[matchKey(r.Date, r.HomeAbbr, r.AwayAbbr)] = r
	}
	return idx
}

func lookupResult(idx resultIndex, b *models.BetRecord) (models.MatchResult, bool) {
	if r, ok := idx.byEvent[b.EventID]; ok {
		return r, true
	}
	r, ok := idx.byMatch[matchKey(b.Date, b.HomeAbbr, b.AwayAbbr)]
	return r, ok
}

func matchKey(date, home, away string) string {
	return date + "|" + home + "|" + away
}
