package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yourusername/value-tracker/internal/models"
)

// betFields is the stable column order of the ledger file. Readers and
// writers agree on this list; changing it is a migration.
var betFields = []string{
	"date",
	"event_id",
	"start_time",
	"home_abbr",
	"away_abbr",
	"selection",
	"odds",
	"model_prob",
	"implied_prob",
	"value",
	"stake",
	"status",
	"payout",
	"profit",
	"actual_outcome",
}

func encodeRow(b models.BetRecord) []string {
	start := ""
	if !b.StartTime.IsZero() {
		start = b.StartTime.UTC().Format(time.RFC3339)
	}
	return []string{
		b.Date,
		b.EventID,
		start,
		b.HomeAbbr,
		b.AwayAbbr,
		string(b.Selection),
		formatFloat(b.Odds),
		formatFloat(b.ModelProb),
		formatFloat(b.ImpliedProb),
		formatFloat(b.Value),
		formatFloat(b.Stake),
		string(b.Status),
		formatFloat(b.Payout),
		formatFloat(b.Profit),
		string(b.ActualOutcome),
	}
}

func decodeRow(row []string) (models.BetRecord, error) {
	if len(row) != len(betFields) {
		return models.BetRecord{}, fmt.Errorf("%w: expected %d columns, got %d",
			models.ErrMalformedRow, len(betFields), len(row))
	}

	b := models.BetRecord{
		Date:          row[0],
		EventID:       row[1],
		HomeAbbr:      row[3],
		AwayAbbr:      row[4],
		Selection:     models.Outcome(row[5]),
		ActualOutcome: models.Outcome(row[14]),
	}
	if b.Date == "" || b.EventID == "" {
		return models.BetRecord{}, fmt.Errorf("%w: missing date or event_id", models.ErrMalformedRow)
	}

	if row[2] != "" {
		start, err := time.Parse(time.RFC3339, row[2])
		if err != nil {
			return models.BetRecord{}, fmt.Errorf("%w: bad start_time %q", models.ErrMalformedRow, row[2])
		}
		b.StartTime = start
	}

	var err error
	if b.Odds, err = parseFloat("odds", row[6]); err != nil {
		return models.BetRecord{}, err
	}
	if b.ModelProb, err = parseFloat("model_prob", row[7]); err != nil {
		return models.BetRecord{}, err
	}
	if b.ImpliedProb, err = parseFloat("implied_prob", row[8]); err != nil {
		return models.BetRecord{}, err
	}
	if b.Value, err = parseFloat("value", row[9]); err != nil {
		return models.BetRecord{}, err
	}
	if b.Stake, err = parseFloat("stake", row[10]); err != nil {
		return models.BetRecord{}, err
	}
	if b.Payout, err = parseFloat("payout", row[12]); err != nil {
		return models.BetRecord{}, err
	}
	if b.Profit, err = parseFloat("profit", row[13]); err != nil {
		return models.BetRecord{}, err
	}

	switch status := models.BetStatus(row[11]); status {
	case models.BetStatusPending, models.BetStatusWon, models.BetStatusLost:
		b.Status = status
	default:
		return models.BetRecord{}, fmt.Errorf("%w: unknown status %q", models.ErrMalformedRow, row[11])
	}

	return b, nil
}

// formatFloat keeps the shortest representation that round-trips exactly, so
// the raw values that selected a bet survive write/read cycles unchanged.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", models.ErrMalformedRow, field, raw)
	}
	return v, nil
}
