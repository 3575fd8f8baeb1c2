package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"essay-hub/internal/adapter"
	"essay-hub/internal/adapter/evaluator"
	"essay-hub/internal/adapter/grammar"
	"essay-hub/internal/adapter/nlp"
	"essay-hub/internal/cache"
	"essay-hub/internal/config"
	"essay-hub/internal/database"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"
	"essay-hub/internal/repository"
	"essay-hub/internal/service"

	_ "github.com/godror/godror"
	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of pending essays to evaluate")
	workers := flag.Int("workers", 4, "concurrent evaluations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Batch evaluation starting up")
	db, err := database.NewSQLXOracleDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		log.Warn("Redis is not configured. Running without cache.")
	}

	llm, err := evaluator.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatal("Failed to create LLM client", zap.Error(err), zap.String("provider", cfg.LLM.Provider))
	}
	var grammarChecker domain.GrammarChecker
	if cfg.Grammar.Enabled {
		grammarChecker = grammar.NewLanguageToolChecker(cfg.Grammar, &http.Client{Timeout: cfg.Grammar.Timeout})
	}

	essayRepo := repository.NewEssayDatabaseAdapter(db)
	essayService := service.NewEssayService(essayRepo, evaluator.NewLLMEssayEvaluator(llm, cfg.LLM), grammarChecker, nlp.NewProseAnalyzer(), cacheAdapter, cfg.Cache)
	batchSvc := service.NewBatchService(essayRepo, essayService, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := batchSvc.EvaluatePending(ctx, *limit, *workers)
	if err != nil {
		log.Fatal("Batch evaluation failed", zap.Error(err))
	}
	log.Info("Batch evaluation completed",
		zap.Int("found", result.Found),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("failed", result.Failed))
}
