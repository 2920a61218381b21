package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/brojonat/irisgate/service/audit"
	"github.com/brojonat/irisgate/service/chainstate"
	"github.com/brojonat/irisgate/service/config"
	"github.com/brojonat/irisgate/service/events"
	"github.com/brojonat/irisgate/service/gateway"
	"github.com/brojonat/irisgate/service/metrics"
	"github.com/brojonat/irisgate/service/rpcserver"
	"github.com/brojonat/irisgate/service/sender"
	"github.com/brojonat/irisgate/service/tippolicy"
	"github.com/brojonat/irisgate/service/txstore"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting irisgate", "addr", cfg.ServerAddr, "log_level", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsCollector := metrics.NewMetrics(nil)

	tipPolicy := buildTipPolicy(cfg, logger)

	var eventPublisher *events.Publisher
	var eventSubscriber *events.Subscriber
	var auditStore *audit.Store

	if cfg.NATSURL != "" {
		var err error
		eventPublisher, err = events.New(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to NATS for lifecycle events", "error", err)
			os.Exit(1)
		}
		defer eventPublisher.Close()
		eventSubscriber = events.NewSubscriber(eventPublisher)
		logger.Info("lifecycle event fan-out enabled", "nats_url", cfg.NATSURL)
	} else {
		logger.Info("NATS_URL not configured, lifecycle event fan-out disabled")
	}

	if cfg.DatabaseURL != "" {
		var err error
		auditStore, err = audit.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer auditStore.Close()
		if err := auditStore.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		logger.Info("audit log enabled")
	} else {
		logger.Info("DATABASE_URL not configured, audit log disabled")
	}

	eventPub := fanoutPublisher(eventPublisher, auditStore)

	oracle := chainstate.NewRPCOracle(cfg.SolanaRPCURL, logger)
	txSender := sender.NewRPCSender(cfg.SolanaRPCURL, logger)
	store := txstore.New(cfg.ShardCount)

	gw := gateway.New(
		store, oracle, txSender, tipPolicy, metricsCollector, eventPub, logger,
		gateway.Config{
			MaxRetries:    cfg.MaxRetries,
			MaxBatchSize:  cfg.MaxBatchSize,
			RetryInterval: cfg.RetryInterval,
			StaleAfter:    cfg.StaleAfter,
		},
	)
	defer gw.Stop()

	var source rpcserver.EventSource
	if eventSubscriber != nil {
		source = eventSubscriber
	}

	rpcServer := rpcserver.New(cfg.ServerAddr, version, gw, metricsCollector, source, logger)

	logger.Info("gateway initialized, all dependencies ready")

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- rpcServer.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("rpc server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown rpc server gracefully", "error", err)
			os.Exit(1)
		}
		logger.Info("rpc server shutdown complete")
	}
}

func buildTipPolicy(cfg *config.Config, logger *slog.Logger) tippolicy.Policy {
	if cfg.TipAddress == "" {
		logger.Info("TIP_ADDRESS not configured, tip policy disabled")
		return tippolicy.Policy{}
	}

	tipAddress, err := solanago.PublicKeyFromBase58(cfg.TipAddress)
	if err != nil {
		logger.Error("invalid TIP_ADDRESS", "error", err)
		os.Exit(1)
	}

	logger.Info("tip policy enabled", "tip_address", cfg.TipAddress, "minimum_tip", cfg.MinimumTip)
	return tippolicy.New(&tipAddress, cfg.MinimumTip)
}

// fanoutPublisher combines the optional NATS and audit sinks into a single
// gateway.EventPublisher, or returns nil if neither is configured.
func fanoutPublisher(pub *events.Publisher, auditStore *audit.Store) gateway.EventPublisher {
	var sinks []gateway.EventPublisher
	if pub != nil {
		sinks = append(sinks, pub)
	}
	if auditStore != nil {
		sinks = append(sinks, audit.NewPublisher(auditStore))
	}
	if len(sinks) == 0 {
		return nil
	}
	return fanout(sinks)
}

type fanout []gateway.EventPublisher

func (f fanout) Publish(kind, signature string, fields map[string]any) {
	for _, sink := range f {
		sink.Publish(kind, signature, fields)
	}
}

func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
