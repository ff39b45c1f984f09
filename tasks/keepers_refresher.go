package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/tidvatten/tidvatten/keepers"
	"github.com/tidvatten/tidvatten/metrics"
	"go.uber.org/atomic"
)

// DefaultFetchTimeout bounds a single upstream fetch when no timeout is configured.
const DefaultFetchTimeout = 30 * time.Second

// RefresherConfig configures a KeepersRefresher.
type RefresherConfig struct {
	// Interval between refreshes.
	Interval time.Duration
	// FetchTimeout bounds each fetch. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration

	Log     *slog.Logger
	Metrics *metrics.Metrics

	// NewTicker overrides the ticker constructor. Nil means NewTicker.
	NewTicker func(time.Duration) Ticker
}

// KeepersRefresher periodically replaces the registry contents with a fresh
// snapshot from the keeper source.
type KeepersRefresher struct {
	source   interfaces.KeeperSource
	registry interfaces.KeeperRegistry
	log      *slog.Logger
	metrics  *metrics.Metrics

	interval     time.Duration
	fetchTimeout time.Duration
	newTicker    func(time.Duration) Ticker

	lastSuccess atomic.Time
	refreshing  atomic.Bool
}

// NewKeepersRefresher wires a refresher between source and registry.
func NewKeepersRefresher(source interfaces.KeeperSource, registry interfaces.KeeperRegistry, cfg RefresherConfig) *KeepersRefresher {
	r := &KeepersRefresher{
		source:       source,
		registry:     registry,
		log:          cfg.Log,
		metrics:      cfg.Metrics,
		interval:     cfg.Interval,
		fetchTimeout: cfg.FetchTimeout,
		newTicker:    cfg.NewTicker,
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewMetrics(common.PackageName, prometheus.NewRegistry())
	}
	if r.fetchTimeout <= 0 {
		r.fetchTimeout = DefaultFetchTimeout
	}
	if r.newTicker == nil {
		r.newTicker = NewTicker
	}
	return r
}

// Run refreshes once immediately and then on every tick until ctx is
// cancelled. An in-flight refresh is not interrupted by cancellation; Run
// returns once it completes.
func (r *KeepersRefresher) Run(ctx context.Context) {
	r.log.Info("Starting keepers refresher", "interval", r.interval, "fetchTimeout", r.fetchTimeout)

	_ = r.Refresh(ctx)

	ticker := r.newTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Keepers refresher stopped")
			return
		case <-ticker.Chan():
			_ = r.Refresh(ctx)
		}
	}
}

// Refresh performs a single fetch and, on success, replaces the registry
// contents. On failure the registry is left as it was and the error is
// logged and returned.
func (r *KeepersRefresher) Refresh(ctx context.Context) error {
	r.refreshing.Store(true)
	defer r.refreshing.Store(false)

	// Shutdown does not abort a fetch in flight, only the timeout does.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := r.source.Fetch(fetchCtx)
	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.RefreshTotal.WithLabelValues(keepers.Reason(err)).Inc()
		r.log.Error("Failed to refresh keepers, keeping previous registry contents",
			"err", err, "known", r.registry.Len())
		return err
	}

	r.registry.Replace(snapshot.Keepers)
	r.lastSuccess.Store(time.Now())

	r.metrics.RefreshTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	r.metrics.KeepersKnown.Set(float64(len(snapshot.Keepers)))
	r.metrics.KeepersUpstreamTime.Set(float64(snapshot.FetchedAt.Unix()))

	r.log.Info("Received keepers", "count", len(snapshot.Keepers), "updateTime", snapshot.FetchedAt)
	r.log.Debug("Got new keepers", "keepers", snapshot.Keepers)
	return nil
}

// LastSuccess returns the time of the last successful refresh, or the zero
// time if none has succeeded yet.
func (r *KeepersRefresher) LastSuccess() time.Time {
	return r.lastSuccess.Load()
}

// Refreshing reports whether a fetch is in flight.
func (r *KeepersRefresher) Refreshing() bool {
	return r.refreshing.Load()
}
