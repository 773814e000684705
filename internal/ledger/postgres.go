package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/database"
	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
)

// PostgresStore persists the ledger in a bets table keyed on
// (date, event_id). It satisfies the same all-or-nothing contract as the
// file store by running each Replace in a single transaction; row-level
// locking makes a separate pass lock unnecessary.
type PostgresStore struct {
	db  *database.DB
	log *logrus.Logger
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(db *database.DB, log *logrus.Logger) *PostgresStore {
	if log == nil {
		log = logrus.New()
	}
	return &PostgresStore{db: db, log: log}
}

// Load returns every bet row, oldest placement first.
func (s *PostgresStore) Load(ctx context.Context) ([]models.BetRecord, error) {
	query := `
		SELECT date, event_id, start_time, home_abbr, away_abbr, selection, odds,
		       model_prob, implied_prob, value, stake, status, payout, profit, actual_outcome
		FROM bets
		ORDER BY date, event_id
	`

	rows, err := s.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var records []models.BetRecord
	for rows.Next() {
		var (
			b         models.BetRecord
			startTime *time.Time
			selection string
			status    string
			actual    string
		)
		err := rows.Scan(
			&b.Date, &b.EventID, &startTime, &b.HomeAbbr, &b.AwayAbbr, &selection, &b.Odds,
			&b.ModelProb, &b.ImpliedProb, &b.Value, &b.Stake, &status, &b.Payout, &b.Profit, &actual,
		)
		if err != nil {
			metrics.LedgerMalformedRowsTotal.Inc()
			s.log.WithError(err).Warn("Skipping unscannable bet row")
			continue
		}
		if startTime != nil {
			b.StartTime = *startTime
		}
		b.Selection = models.Outcome(selection)
		b.Status = models.BetStatus(status)
		b.ActualOutcome = models.Outcome(actual)
		records = append(records, b)
	}
	return records, rows.Err()
}

// Replace upserts the complete ledger state in one transaction. Ledger
// records are never deleted, so an upsert of every record is equivalent to a
// wholesale swap.
func (s *PostgresStore) Replace(ctx context.Context, records []models.BetRecord) error {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bets (date, event_id, start_time, home_abbr, away_abbr, selection, odds,
		                  model_prob, implied_prob, value, stake, status, payout, profit, actual_outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (date, event_id) DO UPDATE SET
			status = EXCLUDED.status,
			payout = EXCLUDED.payout,
			profit = EXCLUDED.profit,
			actual_outcome = EXCLUDED.actual_outcome,
			updated_at = NOW()
	`

	for _, b := range records {
		var startTime *time.Time
		if !b.StartTime.IsZero() {
			t := b.StartTime.UTC()
			startTime = &t
		}
		_, err := tx.Exec(ctx, query,
			b.Date, b.EventID, startTime, b.HomeAbbr, b.AwayAbbr, string(b.Selection), b.Odds,
			b.ModelProb, b.ImpliedProb, b.Value, b.Stake, string(b.Status), b.Payout, b.Profit,
			string(b.ActualOutcome),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert bet %s/%s: %w", b.Date, b.EventID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ledger pass: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}
