package database

import "time"

// Stats is a point-in-time snapshot of pool state and activity counters.
// Field names follow the ops payload format.
type Stats struct {
	PoolSize            int32     `json:"pool_size"`
	CheckedIn           int32     `json:"checked_in"`
	CheckedOut          int32     `json:"checked_out"`
	Overflow            int32     `json:"overflow"`
	TotalConnections    int32     `json:"total_connections"`
	MaxOverflow         int32     `json:"max_overflow"`
	UtilizationPct      float64   `json:"utilization_pct"`
	OverflowPct         float64   `json:"overflow_pct"`
	ConnectionAttempts  int64     `json:"connection_attempts"`
	ConnectionFailures  int64     `json:"connection_failures"`
	SessionCreated      int64     `json:"session_created"`
	SessionClosed       int64     `json:"session_closed"`
	AvgQueryTimeSec     float64   `json:"avg_query_time_sec"`
	TotalQueries        int64     `json:"total_queries"`
	HealthCheckFailures int64     `json:"health_check_failures"`
	LastHealthCheck     time.Time `json:"last_health_check"`
	Status              string    `json:"status"`
}

// Report is a Stats snapshot extended with the derived ratios and advice
// produced by Evaluate.
type Report struct {
	Stats
	FailureRatePct  float64  `json:"failure_rate_pct"`
	SessionBalance  int64    `json:"session_balance"`
	Recommendations []string `json:"recommendations"`
}

// Advice thresholds. Utilization is measured against the base pool size, so
// values above 100 mean overflow connections are in use.
const (
	highUtilizationPct = 80
	highOverflowPct    = 50
	highFailureRatePct = 5
	leakBalanceLimit   = 10
	slowQuerySec       = 1.0
)

// Evaluate derives the failure rate, the session open/close balance, and a
// list of recommendations from a snapshot. It is a pure function: the same
// snapshot always yields the same report.
func Evaluate(s Stats) Report {
	r := Report{Stats: s, Recommendations: []string{}}

	if s.ConnectionAttempts > 0 {
		r.FailureRatePct = float64(s.ConnectionFailures) / float64(s.ConnectionAttempts) * 100
	}
	r.SessionBalance = s.SessionCreated - s.SessionClosed

	if s.UtilizationPct > highUtilizationPct {
		r.Recommendations = append(r.Recommendations, "pool utilization is high, consider increasing pool size")
	}
	if s.OverflowPct > highOverflowPct {
		r.Recommendations = append(r.Recommendations, "overflow connections in heavy use, consider increasing pool size")
	}
	if r.FailureRatePct > highFailureRatePct {
		r.Recommendations = append(r.Recommendations, "connection failure rate is high, check database connectivity")
	}
	if r.SessionBalance > leakBalanceLimit {
		r.Recommendations = append(r.Recommendations, "many sessions opened but never closed, check for scope leaks")
	}
	if s.AvgQueryTimeSec > slowQuerySec {
		r.Recommendations = append(r.Recommendations, "average query time is high, investigate slow queries")
	}

	return r
}
