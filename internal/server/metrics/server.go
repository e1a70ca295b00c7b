package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 3 * time.Second

// Server exposes /metrics (Prometheus scrape) and /stats (the evaluated
// pool report as JSON).
type Server struct {
	address  string
	source   StatsSource
	logger   logging.Logger
	registry *prometheus.Registry
}

func NewServer(a string, l logging.Logger, src StatsSource) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewPoolCollector(src))
	reg.MustRegister(collectors.NewGoCollector())

	return &Server{
		address:  a,
		source:   src,
		logger:   l.With("module", "metrics_server"),
		registry: reg,
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Report()); err != nil {
		s.logger.Error(r.Context(), "stats encoding failed", "error", err)
	}
}

func (s *Server) Run(ctx context.Context) error {

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", s.handleStats)

	srv := &http.Server{Addr: s.address, Handler: mux}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting metrics server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
