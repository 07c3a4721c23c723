package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/payaction/channel_layer/internal/app"
	"github.com/payaction/channel_layer/internal/app/httpapi"
	"github.com/payaction/channel_layer/internal/app/services/payment"
	"github.com/payaction/channel_layer/internal/app/services/registry"
	"github.com/payaction/channel_layer/internal/app/storage"
	filestore "github.com/payaction/channel_layer/internal/app/storage/file"
	memstore "github.com/payaction/channel_layer/internal/app/storage/memory"
	pgstore "github.com/payaction/channel_layer/internal/app/storage/postgres"
	"github.com/payaction/channel_layer/internal/chain"
	"github.com/payaction/channel_layer/internal/config"
	"github.com/payaction/channel_layer/internal/middleware"
	"github.com/payaction/channel_layer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listenAddr := flag.String("listen", "", "listen address override")
	flag.Parse()

	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	log := logger.NewDefault("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	store, cleanup, err := openStore(cfg.Store, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open channel store")
	}
	defer cleanup()

	client, err := chain.NewClient(chain.Config{
		RPCURL:    cfg.RPC.URL,
		NetworkID: cfg.RPC.Network,
		Timeout:   cfg.RPC.Timeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create ledger client")
	}
	verifyNetwork(client, cfg.RPC.Network, log)

	application := app.New(store, client, app.Config{
		Registry: registry.Config{
			DefaultCoverImage:   cfg.Registry.DefaultCoverImage,
			LinkMode:            cfg.Registry.LinkMode,
			BaseURL:             cfg.Registry.BaseURL,
			ContactAllowedHosts: cfg.Registry.ContactAllowedHosts,
		},
		Payments: payment.BuilderConfig{
			Network:             cfg.RPC.Network,
			ValidUntilIncrement: cfg.Payments.ValidUntilIncrement,
			SkipBalanceCheck:    cfg.Payments.SkipBalanceCheck,
		},
	}, log)

	router := httpapi.NewHandler(application, cfg.LedgerID)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggingMiddleware(log.WithField("component", "http")))

	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitBurst, log)
	rateLimiter.StartCleanup(10 * time.Minute)
	cors := middleware.NewCORSMiddleware(cfg.HTTP.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      cors.Handler(rateLimiter.Handler(router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).
			WithField("ledger", cfg.LedgerID).
			Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// verifyNetwork compares the configured network magic against the node. A
// mismatch means every built transaction would be rejected at broadcast, but
// the node may simply be down at boot, so this only warns.
func verifyNetwork(client *chain.Client, want uint32, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	version, err := client.GetVersion(ctx)
	if err != nil {
		log.WithError(err).Warn("could not reach ledger node at startup")
		return
	}
	if version.Protocol.Network != want {
		log.WithField("configured", want).
			WithField("node", version.Protocol.Network).
			Warn("network magic mismatch, transactions will not be broadcastable")
		return
	}
	log.WithField("network", want).
		WithField("useragent", version.UserAgent).
		Info("ledger node reachable")
}

func openStore(cfg config.StoreConfig, log *logger.Logger) (storage.ChannelStore, func(), error) {
	switch cfg.Backend {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.New(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("using postgres channel store")
		return store, func() { db.Close() }, nil
	case config.StoreMemory:
		log.Warn("using in-memory channel store, records will not survive restarts")
		return memstore.New(), func() {}, nil
	default:
		log.WithField("path", cfg.Path).Info("using file channel store")
		return filestore.New(cfg.Path), func() {}, nil
	}
}
