package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/procurex/procurement-backend/internal/api/rest"
	"github.com/procurex/procurement-backend/internal/infrastructure/cache"
	"github.com/procurex/procurement-backend/internal/infrastructure/config"
	"github.com/procurex/procurement-backend/internal/infrastructure/database"
	"github.com/procurex/procurement-backend/internal/infrastructure/repository"
	"github.com/procurex/procurement-backend/internal/infrastructure/telemetry"
	"github.com/procurex/procurement-backend/internal/service/analytics"
	"github.com/procurex/procurement-backend/internal/service/bidding"
	"github.com/procurex/procurement-backend/internal/service/evaluation"
	"github.com/procurex/procurement-backend/internal/service/masterdata"
	"github.com/procurex/procurement-backend/internal/service/oracle"
	"github.com/procurex/procurement-backend/internal/taskqueue"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
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

	// Analytics degrades to uncached reads when Redis is absent.
	var statsCache analytics.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis, zlog)
		if err != nil {
			zlog.Warn("redis unavailable, analytics caching disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			statsCache = redisCache
		}
	}

	var scorer oracle.Oracle
	if cfg.Oracle.APIKey != "" {
		scorer, err = oracle.NewOpenAIOracle(oracle.Config{
			APIKey:            cfg.Oracle.APIKey,
			BaseURL:           cfg.Oracle.BaseURL,
			Model:             cfg.Oracle.Model,
			Timeout:           cfg.Oracle.Timeout,
			RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
		}, zlog)
		if err != nil {
			zlog.Fatal("oracle setup failed", zap.Error(err))
		}
	} else {
		zlog.Warn("no oracle API key configured, evaluation endpoints will be unavailable")
	}

	bidRepo := repository.NewBidRepository(pool)
	offerRepo := repository.NewCounterOfferRepository(pool)
	vendorRepo := repository.NewVendorRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	complianceRepo := repository.NewComplianceRepository(pool)
	evaluationRepo := repository.NewEvaluationRepository(pool)

	queue := taskqueue.New(cfg.Queue.Workers, zlog)
	queue.Start()
	defer queue.Stop()

	bidService := bidding.NewService(bidRepo, offerRepo, vendorRepo, productRepo,
		bidding.WithCounterOfferTTL(cfg.Bidding.CounterOfferTTL))
	masterService := masterdata.NewService(vendorRepo, productRepo)
	evalService := evaluation.NewService(scorer, evaluationRepo, complianceRepo, vendorRepo, bidRepo, queue, zlog)
	statsService := analytics.NewService(vendorRepo, complianceRepo, evaluationRepo, statsCache)

	handler := rest.NewHandler(bidService, masterService, evalService, statsService, queue, logger)
	server := rest.NewServer(cfg.Server, handler, cfg.Security.JWTSecret, logger, metricsMiddleware)

	if err := server.Start(ctx); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
