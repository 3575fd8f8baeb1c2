// @title Essay Hub API
// @version 1.0
// @description Essay evaluation with a social layer: posts, friends and notifications.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "essay-hub/cmd/api/docs"
	"essay-hub/internal/adapter"
	"essay-hub/internal/adapter/evaluator"
	"essay-hub/internal/adapter/grammar"
	"essay-hub/internal/adapter/nlp"
	"essay-hub/internal/adapter/notifystore"
	"essay-hub/internal/cache"
	"essay-hub/internal/config"
	"essay-hub/internal/database"
	"essay-hub/internal/domain"
	"essay-hub/internal/handler"
	"essay-hub/internal/logger"
	"essay-hub/internal/metrics"
	"essay-hub/internal/middleware"
	"essay-hub/internal/repository"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
	_ "github.com/godror/godror"
	_ "github.com/sijms/go-ora/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	metrics.Init()
	ctx := context.Background()

	db, err := database.NewSQLXOracleDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis")

	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			appLogger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	if err := notifystore.EnsureIndexes(ctx, mongoDB); err != nil {
		appLogger.Fatal("Failed to create notification indexes", zap.Error(err))
	}

	// Adapters
	llm, err := evaluator.NewTextGenerator(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err), zap.String("provider", cfg.LLM.Provider))
	}
	essayEvaluator := evaluator.NewLLMEssayEvaluator(llm, cfg.LLM)
	appLogger.Info("LLM evaluator initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))

	var grammarChecker domain.GrammarChecker
	if cfg.Grammar.Enabled {
		grammarChecker = grammar.NewLanguageToolChecker(cfg.Grammar, &http.Client{Timeout: cfg.Grammar.Timeout})
		appLogger.Info("Grammar checker enabled", zap.String("url", cfg.Grammar.URL))
	}
	analyzer := nlp.NewProseAnalyzer()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	publisher := adapter.NewRedisNotificationPublisher(redisClient)
	notificationStore := notifystore.NewMongoNotificationStore(mongoDB)

	// Repositories
	userRepository := repository.NewSQLXUserRepository(db)
	essayRepository := repository.NewEssayDatabaseAdapter(db)
	friendRepository := repository.NewSQLXFriendRepository(db)
	postRepository := repository.NewPostDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Services
	authService, err := service.NewAuthService(userRepository, cfg.Auth())
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	notificationService := service.NewNotificationService(notificationStore, publisher, cacheAdapter, cfg.Cache)
	userService := service.NewUserService(userRepository)
	essayService := service.NewEssayService(essayRepository, essayEvaluator, grammarChecker, analyzer, cacheAdapter, cfg.Cache)
	friendService := service.NewFriendService(friendRepository, userRepository, txManager, notificationService, cfg.Friends)
	postService := service.NewPostService(postRepository, essayRepository, userRepository, txManager, notificationService)
	searchService := service.NewSearchService(userRepository, postRepository)
	appLogger.Info("Services initialized")

	validator := validation.NewValidator()
	handlers := routeHandlers{
		auth:         handler.NewAuthHandler(authService, validator),
		user:         handler.NewUserHandler(userService, validator),
		essay:        handler.NewEssayHandler(essayService, validator),
		friend:       handler.NewFriendHandler(friendService, validator),
		post:         handler.NewPostHandler(postService, validator),
		notification: handler.NewNotificationHandler(notificationService),
		search:       handler.NewSearchHandler(searchService),
		health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"db":    db.PingContext,
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
		}),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})
	setupRoutes(app, handlers, authService, validator, cfg.RateLimit)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
