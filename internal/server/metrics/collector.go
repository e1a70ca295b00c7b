// Package metrics exposes pool statistics to Prometheus and serves the ops
// stats report as JSON.
package metrics

import (
	"github.com/dmitrijs2005/tenantdb/internal/server/database"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource yields pool snapshots for scraping. Satisfied by
// *database.Manager.
type StatsSource interface {
	Stats() database.Stats
	Report() database.Report
}

// PoolCollector translates a Stats snapshot into Prometheus metrics at
// scrape time. It holds no metric state of its own.
type PoolCollector struct {
	source StatsSource

	poolSize       *prometheus.Desc
	checkedIn      *prometheus.Desc
	checkedOut     *prometheus.Desc
	overflow       *prometheus.Desc
	utilization    *prometheus.Desc
	connAttempts   *prometheus.Desc
	connFailures   *prometheus.Desc
	sessionCreated *prometheus.Desc
	sessionClosed  *prometheus.Desc
	totalQueries   *prometheus.Desc
	avgQueryTime   *prometheus.Desc
	healthFailures *prometheus.Desc
	healthy        *prometheus.Desc
}

func NewPoolCollector(src StatsSource) *PoolCollector {
	return &PoolCollector{
		source: src,
		poolSize: prometheus.NewDesc("tenantdb_pool_size",
			"Configured base pool size.", nil, nil),
		checkedIn: prometheus.NewDesc("tenantdb_pool_checked_in_connections",
			"Idle connections currently held by the pool.", nil, nil),
		checkedOut: prometheus.NewDesc("tenantdb_pool_checked_out_connections",
			"Connections currently leased to scopes.", nil, nil),
		overflow: prometheus.NewDesc("tenantdb_pool_overflow_connections",
			"Connections open beyond the base pool size.", nil, nil),
		utilization: prometheus.NewDesc("tenantdb_pool_utilization_percent",
			"Checked-out connections relative to the base pool size.", nil, nil),
		connAttempts: prometheus.NewDesc("tenantdb_pool_connection_attempts_total",
			"Connection attempts since start.", nil, nil),
		connFailures: prometheus.NewDesc("tenantdb_pool_connection_failures_total",
			"Connection attempts that never became usable connections.", nil, nil),
		sessionCreated: prometheus.NewDesc("tenantdb_pool_sessions_created_total",
			"Scopes opened since start.", nil, nil),
		sessionClosed: prometheus.NewDesc("tenantdb_pool_sessions_closed_total",
			"Scopes closed since start.", nil, nil),
		totalQueries: prometheus.NewDesc("tenantdb_pool_queries_total",
			"Statements executed through scopes since start.", nil, nil),
		avgQueryTime: prometheus.NewDesc("tenantdb_pool_query_time_avg_seconds",
			"Mean statement duration since start.", nil, nil),
		healthFailures: prometheus.NewDesc("tenantdb_pool_health_check_failures_total",
			"Background probes that failed since start.", nil, nil),
		healthy: prometheus.NewDesc("tenantdb_pool_healthy",
			"1 when the last connectivity probe succeeded.", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolSize
	ch <- c.checkedIn
	ch <- c.checkedOut
	ch <- c.overflow
	ch <- c.utilization
	ch <- c.connAttempts
	ch <- c.connFailures
	ch <- c.sessionCreated
	ch <- c.sessionClosed
	ch <- c.totalQueries
	ch <- c.avgQueryTime
	ch <- c.healthFailures
	ch <- c.healthy
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.poolSize, prometheus.GaugeValue, float64(s.PoolSize))
	ch <- prometheus.MustNewConstMetric(c.checkedIn, prometheus.GaugeValue, float64(s.CheckedIn))
	ch <- prometheus.MustNewConstMetric(c.checkedOut, prometheus.GaugeValue, float64(s.CheckedOut))
	ch <- prometheus.MustNewConstMetric(c.overflow, prometheus.GaugeValue, float64(s.Overflow))
	ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, s.UtilizationPct)
	ch <- prometheus.MustNewConstMetric(c.connAttempts, prometheus.CounterValue, float64(s.ConnectionAttempts))
	ch <- prometheus.MustNewConstMetric(c.connFailures, prometheus.CounterValue, float64(s.ConnectionFailures))
	ch <- prometheus.MustNewConstMetric(c.sessionCreated, prometheus.CounterValue, float64(s.SessionCreated))
	ch <- prometheus.MustNewConstMetric(c.sessionClosed, prometheus.CounterValue, float64(s.SessionClosed))
	ch <- prometheus.MustNewConstMetric(c.totalQueries, prometheus.CounterValue, float64(s.TotalQueries))
	ch <- prometheus.MustNewConstMetric(c.avgQueryTime, prometheus.GaugeValue, s.AvgQueryTimeSec)
	ch <- prometheus.MustNewConstMetric(c.healthFailures, prometheus.CounterValue, float64(s.HealthCheckFailures))

	up := 0.0
	if s.Status == database.StatusHealthy {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, up)
}
