// Package api is the thin HTTP transport over the tracker service. It
// formats, rounds and serves; all betting logic lives below it, and the
// rounded figures it produces never flow back into selection or storage.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
	"github.com/yourusername/value-tracker/internal/service"
	"github.com/yourusername/value-tracker/internal/valuation"
)

// Server exposes the tracker over HTTP.
type Server struct {
	tracker       *service.Tracker
	policy        service.Policy
	hub           *Hub
	log           *logrus.Logger
	server        *http.Server
	metricsOn     bool
	allowedOrigin string
}

// Config holds API server settings.
type Config struct {
	Address        string
	Policy         service.Policy
	MetricsEnabled bool
	AllowedOrigin  string
	Logger         *logrus.Logger
}

// NewServer creates the API server.
func NewServer(tracker *service.Tracker, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		tracker:       tracker,
		policy:        cfg.Policy,
		log:           log,
		metricsOn:     cfg.MetricsEnabled,
		allowedOrigin: cfg.AllowedOrigin,
	}
	s.hub = NewHub(s.checkOrigin, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /value-report", s.handleValueReport)
	mux.HandleFunc("GET /portfolio", s.handlePortfolio)
	mux.HandleFunc("POST /update", s.handleUpdate)
	mux.HandleFunc("GET /ws", s.hub.HandleWS)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Hub returns the websocket hub for scheduler wiring.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	s.log.WithField("address", s.server.Addr).Info("API server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.allowedOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == s.allowedOrigin
}

// outcomeView is the display form of one outcome: rounded probabilities and
// the edge column, derived here and nowhere else.
type outcomeView struct {
	Outcome     models.Outcome `json:"outcome"`
	Odds        *float64       `json:"odds"`
	ModelProb   float64        `json:"model_prob"`
	ImpliedProb *float64       `json:"implied_prob"`
	Value       *float64       `json:"value"`
	Edge        *float64       `json:"edge"`
}

type matchReportView struct {
	EventID   string          `json:"event_id"`
	Date      string          `json:"date"`
	StartTime time.Time       `json:"start_time"`
	HomeAbbr  string          `json:"home_abbr"`
	AwayAbbr  string          `json:"away_abbr"`
	Outcomes  []outcomeView   `json:"outcomes"`
	BestValue *models.Outcome `json:"best_value,omitempty"`
}

func (s *Server) handleValueReport(w http.ResponseWriter, r *http.Request) {
	policy := s.policy
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days < 0 {
			s.writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		policy.DaysAhead = days
	}

	quotes, err := s.tracker.ValueReport(r.Context(), policy)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	report := make([]matchReportView, 0, len(quotes))
	for i := range quotes {
		report = append(report, buildMatchView(quotes[i]))
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.GetPortfolio(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

type updateRequest struct {
	DaysAhead   *int                `json:"days_ahead"`
	StakePerBet *float64            `json:"stake_per_bet"`
	MinValue    *float64            `json:"min_value"`
	DayCap      *int                `json:"day_cap"`
	ValueGames  []models.MatchQuote `json:"value_games"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.log.WithField("request_id", requestID)

	policy := s.policy
	if r.Body != nil && r.ContentLength != 0 {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.DaysAhead != nil {
			policy.DaysAhead = *req.DaysAhead
		}
		if req.StakePerBet != nil {
			policy.StakePerBet = *req.StakePerBet
		}
		if req.MinValue != nil {
			policy.MinValue = *req.MinValue
		}
		if req.DayCap != nil {
			policy.DayCap = *req.DayCap
		}
		if req.ValueGames != nil {
			policy.ValueGames = req.ValueGames
		}
	}

	p, err := s.tracker.UpdateLedger(r.Context(), policy)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPolicy) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.WithError(err).Error("Update pass failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Broadcast(p)
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if s.allowedOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
	}
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func buildMatchView(q models.MatchQuote) matchReportView {
	view := matchReportView{
		EventID:   q.EventID,
		Date:      q.Date,
		StartTime: q.StartTime,
		HomeAbbr:  q.HomeAbbr,
		AwayAbbr:  q.AwayAbbr,
	}

	var best *models.Outcome
	var bestValue float64
	for _, o := range q.Outcomes {
		ov := outcomeView{
			Outcome:     o.Outcome,
			Odds:        o.Odds,
			ModelProb:   round3(o.ModelProb),
			ImpliedProb: round3p(o.ImpliedProb),
			Value:       round3p(o.Value),
			Edge:        round3p(valuation.Edge(o.ModelProb, o.ImpliedProb)),
		}
		view.Outcomes = append(view.Outcomes, ov)

		if o.Value != nil && (best == nil || *o.Value > bestValue) {
			label := o.Outcome
			best = &label
			bestValue = *o.Value
		}
	}
	view.BestValue = best
	return view
}

func round3(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}

func round3p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := round3(*v)
	return &f
}
