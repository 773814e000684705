package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
)

// scoreboardDay mirrors the league API scoreboard payload. Depending on the
// endpoint the games arrive either grouped by date or flat.
type scoreboardPayload struct {
	GamesByDate []struct {
		Games []scoreboardGame `json:"games"`
	} `json:"gamesByDate"`
	Games []scoreboardGame `json:"games"`
}

type scoreboardGame struct {
	ID        json.Number `json:"id"`
	GameState string      `json:"gameState"`
	HomeTeam  struct {
		Abbrev string `json:"abbrev"`
		Score  *int   `json:"score"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Abbrev string `json:"abbrev"`
		Score  *int   `json:"score"`
	} `json:"awayTeam"`
}

// ScoreboardClient fetches final results from the league scoreboard API. It
// implements the tracker's ResultSource. Days whose games have all finished
// are cached; a day with games still in progress is refetched every call.
type ScoreboardClient struct {
	baseURL string
	client  *RateLimitedHTTPClient
	cache   *cache.Cache
	log     *logrus.Logger
}

// NewScoreboardClient creates a results feed client.
func NewScoreboardClient(baseURL string, client *RateLimitedHTTPClient, cacheTTL time.Duration, log *logrus.Logger) *ScoreboardClient {
	if log == nil {
		log = logrus.New()
	}
	return &ScoreboardClient{
		baseURL: baseURL,
		client:  client,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		log:     log,
	}
}

// Results returns the per-matchup results for the given dates. Unfinished
// games come back with Finished=false so the ledger leaves their bets
// pending.
func (c *ScoreboardClient) Results(ctx context.Context, dates []string) ([]models.MatchResult, error) {
	var results []models.MatchResult
	for _, date := range dates {
		day, err := c.resultsForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		results = append(results, day...)
	}
	return results, nil
}

func (c *ScoreboardClient) resultsForDate(ctx context.Context, date string) ([]models.MatchResult, error) {
	if cached, ok := c.cache.Get(date); ok {
		return cached.([]models.MatchResult), nil
	}

	url := fmt.Sprintf("%s/scoreboard/%s", c.baseURL, date)
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("scoreboard", "error").Inc()
		return nil, fmt.Errorf("scoreboard request failed for %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FeedRequestsTotal.WithLabelValues("scoreboard", fmt.Sprint(resp.StatusCode)).Inc()
		return nil, fmt.Errorf("scoreboard returned status %d for %s", resp.StatusCode, date)
	}
	metrics.FeedRequestsTotal.WithLabelValues("scoreboard", "ok").Inc()

	var payload scoreboardPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard response: %w", err)
	}

	games := payload.Games
	for _, day := range payload.GamesByDate {
		games = append(games, day.Games...)
	}

	results := make([]models.MatchResult, 0, len(games))
	allFinished := len(games) > 0
	for _, g := range games {
		r := models.MatchResult{
			EventID:  models.NormalizeEventID(g.ID.String(), g.HomeTeam.Abbrev, g.AwayTeam.Abbrev, date, time.Time{}),
			Date:     date,
			HomeAbbr: g.HomeTeam.Abbrev,
			AwayAbbr: g.AwayTeam.Abbrev,
		}

		state := g.GameState
		finished := (state == "OFF" || state == "FINAL") && g.HomeTeam.Score != nil && g.AwayTeam.Score != nil
		if finished {
			r.Finished = true
			r.HomeGoals = *g.HomeTeam.Score
			r.AwayGoals = *g.AwayTeam.Score
			switch {
			case r.HomeGoals > r.AwayGoals:
				r.Outcome = models.OutcomeHome
			case r.AwayGoals > r.HomeGoals:
				r.Outcome = models.OutcomeAway
			default:
				r.Outcome = models.OutcomeDraw
			}
		} else {
			allFinished = false
		}
		results = append(results, r)
	}

	// Only fully-finished days are safe to cache: results never change
	// once every game is final.
	if allFinished {
		c.cache.Set(date, results, cache.DefaultExpiration)
	}
	return results, nil
}
