package flags

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/auth"
	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/config"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, promRegistry *prometheus.Registry) *api.HTTPServerConfig {
	listenAddr := cCtx.String(ListenAddrFlag.Name)
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		MetricsRegistry:          promRegistry,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// LoadConfig reads the optional configuration file and applies the
// command-line overrides that were explicitly set.
func LoadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := cCtx.String(ConfigFileFlag.Name); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
		cfg = loaded
	}

	if cCtx.IsSet(RemoteAPIBaseFlag.Name) {
		cfg.RemoteAPIBase = cCtx.String(RemoteAPIBaseFlag.Name)
	}
	if cCtx.IsSet(RefreshIntervalFlag.Name) {
		cfg.Tasks.KeepersRefreshInterval = cCtx.Int64(RefreshIntervalFlag.Name)
	}
	if cCtx.IsSet(FetchTimeoutFlag.Name) {
		cfg.Tasks.KeepersFetchTimeout = cCtx.Int64(FetchTimeoutFlag.Name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupResolver returns the identity resolver selected by the tokens-file flag.
// Without a tokens file every token resolves to the stub identity.
func SetupResolver(cCtx *cli.Context, logger *slog.Logger) (interfaces.IdentityResolver, error) {
	tokensFile := cCtx.String(TokensFileFlag.Name)
	if tokensFile == "" {
		logger.Warn("No tokens file configured, accepting every token as the stub identity")
		return auth.NewStubResolver(), nil
	}

	logger.Info("Loading keeper tokens", "file", tokensFile)
	f, err := os.Open(tokensFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tokens, err := auth.LoadTokens(f)
	if err != nil {
		return nil, err
	}
	logger.Info("Keeper tokens loaded", "count", len(tokens))
	return auth.NewStaticResolver(tokens), nil
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8000",
	Usage:   "address to listen on for API",
	EnvVars: []string{"TIDVATTEN_LISTEN_ADDR"},
}

var ConfigFileFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to a TOML configuration file",
	EnvVars: []string{"TIDVATTEN_CONFIG"},
}

var RemoteAPIBaseFlag = &cli.StringFlag{
	Name:    "remote-api-base",
	Usage:   "base URL of the upstream forum API, overrides remote_api_base",
	EnvVars: []string{"TIDVATTEN_REMOTE_API_BASE"},
}

var RefreshIntervalFlag = &cli.Int64Flag{
	Name:    "keepers-refresh-interval",
	Value:   int64(config.DefaultRefreshInterval / time.Second),
	Usage:   "seconds between keeper list refreshes, overrides tasks.keepers_refresh_interval",
	EnvVars: []string{"TIDVATTEN_KEEPERS_REFRESH_INTERVAL"},
}

var FetchTimeoutFlag = &cli.Int64Flag{
	Name:    "keepers-fetch-timeout",
	Value:   int64(config.DefaultFetchTimeout / time.Second),
	Usage:   "seconds before a keeper list fetch is abandoned, overrides tasks.keepers_fetch_timeout",
	EnvVars: []string{"TIDVATTEN_KEEPERS_FETCH_TIMEOUT"},
}

var TokensFileFlag = &cli.StringFlag{
	Name:    "tokens-file",
	Usage:   "JSON file mapping keeper API tokens to usernames; without it every token is accepted",
	EnvVars: []string{"TIDVATTEN_TOKENS_FILE"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to keep serving after the server is marked not ready, before shutdown",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}

var ServiceFlags = []cli.Flag{
	ListenAddrFlag,
	ConfigFileFlag,
	RemoteAPIBaseFlag,
	RefreshIntervalFlag,
	FetchTimeoutFlag,
	TokensFileFlag,
}
