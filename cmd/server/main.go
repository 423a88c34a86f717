package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alphacore/alphacore-backend/internal/adapter/quote"
	"github.com/alphacore/alphacore-backend/internal/adapter/repository/memory"
	"github.com/alphacore/alphacore-backend/internal/adapter/repository/postgres"
	redisstore "github.com/alphacore/alphacore-backend/internal/adapter/repository/redis"
	"github.com/alphacore/alphacore-backend/internal/adapter/repository/sqlite"
	"github.com/alphacore/alphacore-backend/internal/config"
	"github.com/alphacore/alphacore-backend/internal/domain"
	"github.com/alphacore/alphacore-backend/internal/server"
	"github.com/alphacore/alphacore-backend/internal/usecase/portfolio"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.NewMainConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx := context.Background()

	store, closeStore, err := newLedgerStore(ctx, cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer closeStore()

	portfolioService := portfolio.NewPortfolioService(store)

	// First access seeds the default allocation into an empty store
	if _, err := portfolioService.LoadPositions(ctx); err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("store", cfg.StoreBackend).Info("ledger ready")

	quotes := newQuoteSource(cfg)

	handler := server.NewPortfolioHandler(portfolioService, quotes)
	srv := server.NewServer(server.Config{Port: cfg.Port, APIToken: cfg.APIToken}, handler)

	go func() {
		if err := srv.Start(); err != nil {
			logrus.Fatal(err)
		}
	}()

	waitForShutdown(srv)
}

// newLedgerStore builds the configured store backend and returns it together
// with its cleanup func
func newLedgerStore(ctx context.Context, cfg *config.MainConfig) (domain.LedgerStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return memory.NewStore(), func() {}, nil

	case "sqlite":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewLedgerStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		store, err := redisstore.NewStore(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown ledger store backend %q", cfg.StoreBackend)
}

// newQuoteSource prefers live Finnhub quotes, degrading to synthetic ones
// when no API key is configured or a live fetch fails
func newQuoteSource(cfg *config.MainConfig) domain.QuoteSource {
	synthetic := quote.NewSynthetic(time.Now().UnixNano())

	if cfg.FinnhubAPIKey == "" {
		logrus.Info("no quote API key configured, running in simulation mode")
		return synthetic
	}

	return quote.NewFallback(quote.NewFinnhubClient(cfg.FinnhubBaseURL, cfg.FinnhubAPIKey), synthetic)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the
// server
func waitForShutdown(srv *server.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logrus.WithField("signal", sig.String()).Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
}
