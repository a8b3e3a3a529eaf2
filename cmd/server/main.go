package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"scoreapi/internal/api"
	"scoreapi/internal/platform/config"
	"scoreapi/internal/platform/httpserver"
	"scoreapi/internal/platform/logger"
	"scoreapi/internal/platform/metrics"
	httptransport "scoreapi/internal/transport/http"
)

var (
	flagPort int
	flagLog  string
)

// rootCmd runs the scoring API server.
var rootCmd = &cobra.Command{
	Use:   "scoreapi",
	Short: "Serve the online_score and clients_interests methods over HTTP",
	Long: `Serve the scoring API.

Configuration is read from SCOREAPI_* environment variables; --port and --log
override the listen address and log file.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "listen port (overrides SCOREAPI_ADDR)")
	rootCmd.Flags().StringVarP(&flagLog, "log", "l", "", "log file path (overrides SCOREAPI_LOG_FILE, stdout when empty)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runServer wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Addr = ":" + strconv.Itoa(flagPort)
	}
	if cmd.Flags().Changed("log") {
		cfg.LogFile = flagLog
	}

	log, closer, err := logger.Open(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	st, err := buildStore(ctx, cfg, log, m)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("closing store", "error", err)
		}
	}()

	auth, err := api.NewAuthenticator(cfg.Auth.Salt, cfg.Auth.AdminSalt)
	if err != nil {
		return err
	}
	dispatcher, err := api.New(st, auth,
		api.WithLogger(log),
		api.WithMetrics(m),
		api.WithScoreTTL(cfg.Handlers.ScoreCacheTTL),
		api.WithInterestsConcurrency(cfg.Handlers.InterestsConcurrency),
	)
	if err != nil {
		return err
	}

	handler := httptransport.NewHandler(dispatcher, st, log)
	router := httptransport.NewRouter(handler, log, reg)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting scoreapi",
		"addr", cfg.Addr,
		"store_backend", cfg.Store.Backend,
		"cache_backend", cfg.Store.CacheBackend,
	)
	return httpserver.Run(ctx, srv, 10*time.Second, log)
}

// contextWithTimeout bounds startup probes against the backends.
func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
