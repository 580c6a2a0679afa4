package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/procurex/procurement-backend/internal/infrastructure/config"
	"github.com/procurex/procurement-backend/internal/infrastructure/database"
	"github.com/procurex/procurement-backend/internal/infrastructure/repository"
	"github.com/procurex/procurement-backend/internal/infrastructure/telemetry"
	"github.com/procurex/procurement-backend/internal/service/bidding"
)

// The sweeper expires counter-offers whose validity window has lapsed. It is
// a standalone binary so deployments can run exactly one instance regardless
// of how many API replicas exist.
func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
		once       = flag.Bool("once", false, "Run a single sweep and exit")
	)
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := telemetry.SetupZap(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, &cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	bids := bidding.NewService(
		repository.NewBidRepository(pool),
		repository.NewCounterOfferRepository(pool),
		repository.NewVendorRepository(pool),
		repository.NewProductRepository(pool),
	)

	sweep := func() {
		expired, err := bids.ExpireStaleCounterOffers(ctx, time.Now().UTC())
		if err != nil {
			zlog.Error("sweep failed", zap.Error(err))
			return
		}
		if expired > 0 {
			zlog.Info("expired stale counter-offers", zap.Int64("count", expired))
		}
	}

	sweep()
	if *once {
		return
	}

	ticker := time.NewTicker(cfg.Sweeper.Interval)
	defer ticker.Stop()

	zlog.Info("sweeper running", zap.Duration("interval", cfg.Sweeper.Interval))
	for {
		select {
		case <-ctx.Done():
			zlog.Info("sweeper stopping")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
