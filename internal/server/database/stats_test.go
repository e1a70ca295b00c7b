package database

import (
	"strings"
	"testing"
)

func TestEvaluate_QuietPool(t *testing.T) {
	s := Stats{
		PoolSize:           5,
		MaxOverflow:        10,
		CheckedIn:          5,
		TotalConnections:   5,
		ConnectionAttempts: 5,
		SessionCreated:     20,
		SessionClosed:      20,
		AvgQueryTimeSec:    0.002,
	}

	r := Evaluate(s)

	if r.FailureRatePct != 0 {
		t.Errorf("expected zero failure rate, got %v", r.FailureRatePct)
	}
	if r.SessionBalance != 0 {
		t.Errorf("expected zero session balance, got %v", r.SessionBalance)
	}
	if r.Recommendations == nil {
		t.Fatal("recommendations must not be nil")
	}
	if len(r.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", r.Recommendations)
	}
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{
			name:  "high utilization",
			stats: Stats{UtilizationPct: 81},
			want:  "pool utilization is high",
		},
		{
			name:  "overflow in heavy use",
			stats: Stats{OverflowPct: 51},
			want:  "overflow connections in heavy use",
		},
		{
			name:  "connection failures",
			stats: Stats{ConnectionAttempts: 100, ConnectionFailures: 6},
			want:  "connection failure rate is high",
		},
		{
			name:  "session leak",
			stats: Stats{SessionCreated: 30, SessionClosed: 19},
			want:  "check for scope leaks",
		},
		{
			name:  "slow queries",
			stats: Stats{AvgQueryTimeSec: 1.5},
			want:  "average query time is high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(tt.stats)
			found := false
			for _, rec := range r.Recommendations {
				if strings.Contains(rec, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected recommendation containing %q, got %v", tt.want, r.Recommendations)
			}
		})
	}
}

func TestEvaluate_AtThresholdStaysQuiet(t *testing.T) {
	// Advice fires strictly above the limits.
	s := Stats{
		UtilizationPct:     80,
		OverflowPct:        50,
		ConnectionAttempts: 100,
		ConnectionFailures: 5,
		SessionCreated:     15,
		SessionClosed:      5,
		AvgQueryTimeSec:    1.0,
	}

	r := Evaluate(s)
	if len(r.Recommendations) != 0 {
		t.Errorf("expected no recommendations at exact thresholds, got %v", r.Recommendations)
	}
}

func TestEvaluate_DerivedRatios(t *testing.T) {
	s := Stats{
		ConnectionAttempts: 200,
		ConnectionFailures: 50,
		SessionCreated:     12,
		SessionClosed:      4,
	}

	r := Evaluate(s)

	if r.FailureRatePct != 25 {
		t.Errorf("expected failure rate 25, got %v", r.FailureRatePct)
	}
	if r.SessionBalance != 8 {
		t.Errorf("expected session balance 8, got %v", r.SessionBalance)
	}
}
