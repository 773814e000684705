package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
)

// Probabilities is the model's view of one matchup. Draw covers the
// overtime/shootout class for sports without regulation ties.
type Probabilities struct {
	Home float64
	Draw float64
	Away float64
}

// Predictor produces outcome probabilities for a matchup. The model behind
// it is opaque to the tracker.
type Predictor interface {
	Predict(ctx context.Context, homeAbbr, awayAbbr string) (Probabilities, error)
}

// ntEvent mirrors the odds provider's event payload.
type ntEvent struct {
	EventID    json.Number `json:"eventId"`
	StartTime  string      `json:"startTime"`
	Tournament struct {
		Name string `json:"name"`
	} `json:"tournament"`
	HomeParticipant string `json:"homeParticipant"`
	AwayParticipant string `json:"awayParticipant"`
	MainMarket      *struct {
		Selections []struct {
			SelectionValue string  `json:"selectionValue"`
			SelectionOdds  float64 `json:"selectionOdds"`
		} `json:"selections"`
	} `json:"mainMarket"`
}

type ntEventList struct {
	EventList []ntEvent `json:"eventList"`
}

// OddsClient fetches the 1X2 schedule and odds from the bookmaker API and
// joins each matchup with model probabilities. It implements the tracker's
// QuoteSource.
type OddsClient struct {
	baseURL    string
	tournament string
	apiKey     string
	client     *RateLimitedHTTPClient
	predictor  Predictor
	teams      TeamMapper
	log        *logrus.Logger
	now        func() time.Time
}

// TeamMapper resolves the feed's participant names to team abbreviations.
type TeamMapper interface {
	Abbreviation(participant string) (string, bool)
}

// NewOddsClient creates an odds feed client.
func NewOddsClient(baseURL, tournament, apiKey string, client *RateLimitedHTTPClient, predictor Predictor, teams TeamMapper, log *logrus.Logger) *OddsClient {
	if log == nil {
		log = logrus.New()
	}
	return &OddsClient{
		baseURL:    baseURL,
		tournament: tournament,
		apiKey:     apiKey,
		client:     client,
		predictor:  predictor,
		teams:      teams,
		log:        log,
		now:        time.Now,
	}
}

// Quotes returns matchup quotes for today through daysAhead days out.
// Matchups whose participants cannot be mapped to known teams are skipped;
// missing market legs come back as nil odds and are rejected later by the
// selector's completeness gate.
func (c *OddsClient) Quotes(ctx context.Context, daysAhead int) ([]models.MatchQuote, error) {
	events, err := c.fetchEvents(ctx)
	if err != nil {
		return nil, err
	}

	firstDay := c.now().Truncate(24 * time.Hour)
	lastDay := firstDay.AddDate(0, 0, daysAhead)

	var quotes []models.MatchQuote
	for _, ev := range events {
		if ev.Tournament.Name != c.tournament {
			continue
		}

		start, err := time.Parse(time.RFC3339, ev.StartTime)
		if err != nil {
			c.log.WithField("start_time", ev.StartTime).Debug("Skipping event with unparseable start time")
			continue
		}
		day := start.Truncate(24 * time.Hour)
		if day.Before(firstDay) || day.After(lastDay) {
			continue
		}

		homeAbbr, okHome := c.teams.Abbreviation(ev.HomeParticipant)
		awayAbbr, okAway := c.teams.Abbreviation(ev.AwayParticipant)
		if !okHome || !okAway {
			c.log.WithFields(logrus.Fields{
				"home": ev.HomeParticipant,
				"away": ev.AwayParticipant,
			}).Debug("Skipping event with unmapped participants")
			continue
		}

		probs, err := c.predictor.Predict(ctx, homeAbbr, awayAbbr)
		if err != nil {
			return nil, fmt.Errorf("failed to predict %s vs %s: %w", homeAbbr, awayAbbr, err)
		}

		var oddsHome, oddsDraw, oddsAway *float64
		if ev.MainMarket != nil {
			for _, sel := range ev.MainMarket.Selections {
				odds := sel.SelectionOdds
				switch sel.SelectionValue {
				case "H":
					oddsHome = &odds
				case "D":
					oddsDraw = &odds
				case "A":
					oddsAway = &odds
				}
			}
		}

		dateStr := start.Format("2006-01-02")
		quotes = append(quotes, models.MatchQuote{
			EventID:   models.NormalizeEventID(ev.EventID.String(), homeAbbr, awayAbbr, dateStr, start),
			Date:      dateStr,
			StartTime: start,
			HomeAbbr:  homeAbbr,
			AwayAbbr:  awayAbbr,
			Outcomes: []models.OutcomeQuote{
				{Outcome: models.OutcomeHome, ModelProb: probs.Home, Odds: oddsHome},
				{Outcome: models.OutcomeDraw, ModelProb: probs.Draw, Odds: oddsDraw},
				{Outcome: models.OutcomeAway, ModelProb: probs.Away, Odds: oddsAway},
			},
		})
	}

	return quotes, nil
}

func (c *OddsClient) fetchEvents(ctx context.Context) ([]ntEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("odds", "error").Inc()
		return nil, fmt.Errorf("odds feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FeedRequestsTotal.WithLabelValues("odds", fmt.Sprint(resp.StatusCode)).Inc()
		return nil, fmt.Errorf("odds feed returned status %d", resp.StatusCode)
	}
	metrics.FeedRequestsTotal.WithLabelValues("odds", "ok").Inc()

	var payload ntEventList
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode odds feed response: %w", err)
	}
	return payload.EventList, nil
}
