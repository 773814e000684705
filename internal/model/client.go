// Package model provides the HTTP client for the prediction service. The
// model itself is an external collaborator: this client only turns a
// matchup into outcome probabilities.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/feed"
)

type predictRequest struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

type predictResponse struct {
	ProbHomeWin float64 `json:"prob_home_win"`
	ProbOT      float64 `json:"prob_ot"`
	ProbAwayWin float64 `json:"prob_away_win"`
}

// Client calls the prediction service's /predict endpoint. Responses are
// cached per matchup: the model's view of a pairing does not move within a
// pass, and repeated passes within the TTL reuse it.
type Client struct {
	baseURL string
	client  *feed.RateLimitedHTTPClient
	cache   *cache.Cache
	log     *logrus.Logger
}

// NewClient creates a prediction service client.
func NewClient(baseURL string, httpClient *feed.RateLimitedHTTPClient, cacheTTL time.Duration, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		log:     log,
	}
}

// Predict implements feed.Predictor.
func (c *Client) Predict(ctx context.Context, homeAbbr, awayAbbr string) (feed.Probabilities, error) {
	key := homeAbbr + "|" + awayAbbr
	if cached, ok := c.cache.Get(key); ok {
		return cached.(feed.Probabilities), nil
	}

	body, err := json.Marshal(predictRequest{HomeTeam: homeAbbr, AwayTeam: awayAbbr})
	if err != nil {
		return feed.Probabilities{}, err
	}

	resp, err := c.client.Post(ctx, c.baseURL+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		return feed.Probabilities{}, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return feed.Probabilities{}, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var payload predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return feed.Probabilities{}, fmt.Errorf("failed to decode prediction response: %w", err)
	}

	probs := feed.Probabilities{
		Home: payload.ProbHomeWin,
		Draw: payload.ProbOT,
		Away: payload.ProbAwayWin,
	}
	c.cache.Set(key, probs, cache.DefaultExpiration)

	c.log.WithFields(logrus.Fields{
		"home": homeAbbr,
		"away": awayAbbr,
	}).Debug("Fetched model probabilities")

	return probs, nil
}
