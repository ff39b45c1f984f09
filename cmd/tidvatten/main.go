package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tidvatten/tidvatten/api/reporthandler"
	"github.com/tidvatten/tidvatten/api/server"
	"github.com/tidvatten/tidvatten/auth"
	"github.com/tidvatten/tidvatten/cmd/flags"
	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/keepers"
	"github.com/tidvatten/tidvatten/metrics"
	"github.com/tidvatten/tidvatten/registry"
	"github.com/tidvatten/tidvatten/tasks"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:    "tidvatten",
		Usage:   "Serve the keeper report API",
		Version: common.Version,
		Flags:   append(append([]cli.Flag{}, flags.ServiceFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			cfg, err := flags.LoadConfig(cCtx)
			if err != nil {
				logger.Error("Invalid configuration", "err", err)
				return err
			}

			promRegistry := prometheus.NewRegistry()
			promRegistry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.NewMetrics(common.PackageName, promRegistry)

			resolver, err := flags.SetupResolver(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up identity resolver", "err", err)
				return err
			}

			keepersRegistry := registry.NewKeepersRegistry()
			refresher := tasks.NewKeepersRefresher(
				keepers.NewClient(cfg.RemoteAPIBase, nil),
				keepersRegistry,
				tasks.RefresherConfig{
					Interval:     cfg.KeepersRefreshInterval(),
					FetchTimeout: cfg.KeepersFetchTimeout(),
					Log:          logger.With("task", "keepers"),
					Metrics:      m,
				},
			)

			gate := auth.NewGate(resolver, logger, m)
			srv, err := server.New(
				flags.ConfigureServer(cCtx, logger, promRegistry),
				reporthandler.NewHandler(gate, logger, m),
				keepersRegistry,
			)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				refresher.Run(gCtx)
				return nil
			})

			logger.Info("Starting server", "remoteAPIBase", cfg.RemoteAPIBase)
			srv.RunInBackground()

			logger.Info("Server is running, press Ctrl+C to stop")
			<-ctx.Done()
			logger.Info("Shutdown signal received")

			srv.Shutdown()
			if err := g.Wait(); err != nil {
				logger.Error("Background task failed", "err", err)
				return err
			}
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
