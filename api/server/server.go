package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/api/reporthandler"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/tidvatten/tidvatten/metrics"
	"go.uber.org/atomic"
)

type Server struct {
	cfg       *api.HTTPServerConfig
	isReady   atomic.Bool
	drainedAt atomic.Time
	log       *slog.Logger

	srv        *http.Server
	metricsSrv *metrics.MetricsServer

	reports  *reporthandler.Handler
	registry interfaces.KeeperRegistry
}

// New builds the API server. The registry is only read, for health reporting.
func New(cfg *api.HTTPServerConfig, reports *reporthandler.Handler, registry interfaces.KeeperRegistry) (srv *Server, err error) {
	if reports == nil {
		return nil, errors.New("report handler is required")
	}
	if registry == nil {
		return nil, errors.New("keepers registry is required")
	}

	metricsRegistry := cfg.MetricsRegistry
	if metricsRegistry == nil {
		metricsRegistry = prometheus.NewRegistry()
	}

	srv = &Server{
		cfg:        cfg,
		log:        cfg.Log,
		metricsSrv: metrics.New(cfg.MetricsAddr, metricsRegistry),
		reports:    reports,
		registry:   registry,
	}
	srv.isReady.Store(true)

	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

func (srv *Server) getRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(srv.recoverer)

	// Set before mounting so subrouters inherit them.
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed)
	})

	mux.Route(api.APIBase, func(r chi.Router) {
		r.Use(srv.httpLogger)
		srv.reports.RegisterRoutes(r)
	})

	// Health and diagnostic endpoints
	mux.With(srv.httpLogger).Get("/livez", srv.handleLivenessCheck)
	mux.With(srv.httpLogger).Get("/readyz", srv.handleReadinessCheck)
	mux.With(srv.httpLogger).Get("/drain", srv.handleDrain)
	mux.With(srv.httpLogger).Get("/undrain", srv.handleUndrain)

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

// recoverer turns handler panics into the JSON 500 response.
func (srv *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				srv.log.Error("Handler panicked", "panic", rvr, "path", r.URL.Path,
					"requestID", middleware.GetReqID(r.Context()))
				api.WriteError(w, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (srv *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"status": "alive"})
}

func (srv *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Load() {
		_ = api.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
		return
	}

	_ = api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"keepers": srv.registry.Len(),
	})
}

// markNotReady flips readiness off and records when draining began. It
// reports false if the server was already draining.
func (srv *Server) markNotReady() bool {
	if !srv.isReady.Swap(false) {
		return false
	}
	srv.drainedAt.Store(time.Now())
	srv.log.Info("Server marked as not ready")
	return true
}

func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !srv.markNotReady() {
		_ = api.WriteJSON(w, http.StatusOK, map[string]any{"status": "already draining"})
		return
	}

	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"status": "draining"})
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if srv.isReady.Swap(true) {
		_ = api.WriteJSON(w, http.StatusOK, map[string]any{"status": "already ready"})
		return
	}

	srv.log.Info("Server marked as ready")

	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// Handler returns the root HTTP handler.
func (srv *Server) Handler() http.Handler {
	return srv.srv.Handler
}

func (srv *Server) RunInBackground() {
	// metrics
	if srv.cfg.MetricsAddr != "" {
		go func() {
			srv.log.With("metricsAddress", srv.cfg.MetricsAddr).Info("Starting metrics server")
			err := srv.metricsSrv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("HTTP server failed", "err", err)
			}
		}()
	}

	// api
	go func() {
		srv.log.Info("Starting HTTP server", "listenAddress", srv.cfg.ListenAddr)
		if err := srv.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.log.Error("HTTP server failed", "err", err)
		}
	}()
}

// Drain marks the server not ready and blocks until DrainDuration has
// passed since draining began, so load balancers can observe /readyz
// failing before the listener closes. A drain started earlier through
// /drain counts towards the wait.
func (srv *Server) Drain() {
	srv.markNotReady()
	wait := time.Until(srv.drainedAt.Load().Add(srv.cfg.DrainDuration))
	if wait <= 0 {
		return
	}
	srv.log.Info("Waiting for drain period", "remaining", wait)
	time.Sleep(wait)
	srv.log.Info("Drain period completed")
}

// Shutdown drains the server, then gracefully stops the API and metrics
// listeners.
func (srv *Server) Shutdown() {
	srv.Drain()

	// api
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := srv.srv.Shutdown(ctx); err != nil {
		srv.log.Error("Graceful HTTP server shutdown failed", "err", err)
	} else {
		srv.log.Info("HTTP server gracefully stopped")
	}

	// metrics
	if len(srv.cfg.MetricsAddr) != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
		defer cancel()

		if err := srv.metricsSrv.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful metrics server shutdown failed", "err", err)
		} else {
			srv.log.Info("Metrics server gracefully stopped")
		}
	}
}
