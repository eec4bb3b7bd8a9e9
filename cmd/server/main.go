package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawsage/internal/bot"
	"drawsage/internal/cache"
	"drawsage/internal/config"
	"drawsage/internal/db"
	"drawsage/internal/engine"
	"drawsage/internal/handler"
	"drawsage/internal/job"
	"drawsage/internal/provider"
	"drawsage/internal/repository"
	"drawsage/internal/service"
	"drawsage/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "drawsage/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newDrawRepoFunc     = repository.NewDrawRepository
	newDrawProviderFunc = func(baseURL string, tracer trace.Tracer) service.DrawProvider {
		return provider.NewDrawProvider(baseURL, tracer)
	}
	newPredictionServiceFunc = service.NewPredictionService
	newDrawPollerFunc        = job.NewDrawPoller
	startPollerFunc          = func(p *job.DrawPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc     = bot.StartTelegramBot
	newHandlerFunc           = handler.New
	newRouterFunc            = gin.Default
	setupSignalNotify        = signal.Notify
	waitForSignalFunc        = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc      = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc   = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           drawsage API
// @version         1.0
// @description     Ensemble BIG/SMALL prediction service for numeric draw games.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations. Without a database the
	// service runs provider-only; the repo stays nil.
	var drawRepo service.DrawRepository
	if db.Pool != nil {
		repo := newDrawRepoFunc(db.Pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		if n, err := repo.Count(ctx); err == nil {
			log.Printf("draw store ready, %d draws", n)
		}
		drawRepo = repo
	}

	// Create provider, ensemble engine, and prediction service
	drawProvider := newDrawProviderFunc(cfg.DrawAPIBaseURL, tracer)
	predictor := engine.NewEngine(engine.DefaultPopulation(), time.Duration(cfg.DrawIntervalSecs)*time.Second)
	predictionService := newPredictionServiceFunc(tracer, drawProvider, drawRepo, cache.Client, predictor, service.Config{
		MinHistory: cfg.MinHistory,
		FetchLimit: cfg.HistoryFetchLimit,
		StatsTTL:   time.Duration(cfg.StatsTTLHours) * time.Hour,
	})

	// Start draw poller (background goroutine, stopped by ctx cancel)
	poller := newDrawPollerFunc(tracer, predictionService, cfg.DrawPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(predictionService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, predictionService, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("drawsage"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
