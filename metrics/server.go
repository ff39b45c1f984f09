package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const handlerTimeout = 10 * time.Second

// MetricsServer serves /metrics for a single registry.
type MetricsServer struct {
	srv *http.Server
}

// New returns a server exposing everything registered with reg on addr.
func New(addr string, reg *prometheus.Registry) *MetricsServer {
	mux := chi.NewRouter()
	mux.Handle("/metrics", Handler(reg))
	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: handlerTimeout,
		},
	}
}

// Handler returns the instrumented Prometheus handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Timeout: handlerTimeout}),
	)
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
