package valuation

import (
	"math"
	"testing"

	"github.com/yourusername/value-tracker/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestImpliedProbability(t *testing.T) {
	p := ImpliedProbability(floatPtr(2.5))
	if p == nil {
		t.Fatal("expected implied probability for a priced outcome")
	}
	if math.Abs(*p-0.4) > 1e-12 {
		t.Errorf("expected implied probability 0.4, got %v", *p)
	}

	if ImpliedProbability(nil) != nil {
		t.Error("expected nil implied probability for a missing price")
	}
	if ImpliedProbability(floatPtr(0)) != nil {
		t.Error("expected nil implied probability for a zero price")
	}
	if ImpliedProbability(floatPtr(-1.5)) != nil {
		t.Error("expected nil implied probability for a negative price")
	}
}

func TestExpectedValue(t *testing.T) {
	ev := ExpectedValue(0.444, floatPtr(3.44))
	if ev == nil {
		t.Fatal("expected an EV for a priced outcome")
	}
	if math.Abs(*ev-(0.444*3.44-1)) > 1e-12 {
		t.Errorf("expected EV %v, got %v", 0.444*3.44-1, *ev)
	}

	if ExpectedValue(0.5, nil) != nil {
		t.Error("expected nil EV for a missing price")
	}
}

func TestExpectedValueNegative(t *testing.T) {
	ev := ExpectedValue(0.2, floatPtr(2.0))
	if ev == nil {
		t.Fatal("expected an EV")
	}
	if math.Abs(*ev-(-0.6)) > 1e-12 {
		t.Errorf("expected EV -0.6, got %v", *ev)
	}
}

func TestEdge(t *testing.T) {
	e := Edge(0.5, floatPtr(0.4))
	if e == nil {
		t.Fatal("expected an edge value")
	}
	if math.Abs(*e-0.1) > 1e-12 {
		t.Errorf("expected edge 0.1, got %v", *e)
	}

	if Edge(0.5, nil) != nil {
		t.Error("expected nil edge when implied probability is missing")
	}
}

// TestNoNormalization checks that implied probabilities are computed per
// outcome in isolation: a market whose implied probabilities sum well above 1
// keeps each leg at exactly 1/odds.
func TestNoNormalization(t *testing.T) {
	q := models.MatchQuote{
		Outcomes: []models.OutcomeQuote{
			{Outcome: models.OutcomeHome, ModelProb: 0.5, Odds: floatPtr(1.5)},
			{Outcome: models.OutcomeDraw, ModelProb: 0.2, Odds: floatPtr(2.0)},
			{Outcome: models.OutcomeAway, ModelProb: 0.3, Odds: floatPtr(2.5)},
		},
	}
	Enrich(&q)

	want := []float64{1 / 1.5, 1 / 2.0, 1 / 2.5}
	for i, o := range q.Outcomes {
		if o.ImpliedProb == nil {
			t.Fatalf("outcome %d: expected implied probability", i)
		}
		if math.Abs(*o.ImpliedProb-want[i]) > 1e-12 {
			t.Errorf("outcome %d: expected implied %v, got %v", i, want[i], *o.ImpliedProb)
		}
	}
}

func TestEnrichPartialMarket(t *testing.T) {
	q := models.MatchQuote{
		Outcomes: []models.OutcomeQuote{
			{Outcome: models.OutcomeHome, ModelProb: 0.5, Odds: floatPtr(2.2)},
			{Outcome: models.OutcomeDraw, ModelProb: 0.2, Odds: nil},
			{Outcome: models.OutcomeAway, ModelProb: 0.3, Odds: floatPtr(3.0)},
		},
	}
	Enrich(&q)

	if q.Outcomes[0].Value == nil || q.Outcomes[0].ImpliedProb == nil {
		t.Error("expected derived values for the priced home outcome")
	}
	if q.Outcomes[1].Value != nil || q.Outcomes[1].ImpliedProb != nil {
		t.Error("expected nil derived values for the unpriced draw outcome")
	}
	if q.Outcomes[2].Value == nil {
		t.Error("expected derived values for the priced away outcome")
	}
}
