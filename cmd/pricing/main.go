package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/lsmbench/internal/pricing/application"
	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
	"github.com/wyfcoding/lsmbench/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/lsmbench/internal/pricing/infrastructure/persistence/mysql"
	httpserver "github.com/wyfcoding/lsmbench/internal/pricing/interfaces/http"
	"github.com/wyfcoding/lsmbench/pkg/config"
	"github.com/wyfcoding/lsmbench/pkg/db"
	"github.com/wyfcoding/lsmbench/pkg/logger"
	"github.com/wyfcoding/lsmbench/pkg/metrics"
	"github.com/wyfcoding/lsmbench/pkg/middleware"
	"github.com/wyfcoding/lsmbench/pkg/mq"
)

var configPath = flag.String("config", "configs/pricing/config.toml", "config file path")

const serviceName = "pricing"

func main() {
	flag.Parse()
	ctx := context.Background()

	// 1. Config
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 3. Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(serviceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics server", "error", err)
		}
	}

	// 4. Database（可选，结果落库）
	var records domain.RunRecordRepository
	if cfg.Database.Enabled {
		database, err := db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to connect database", "error", err)
		}
		defer database.Close()

		// Auto Migrate
		if cfg.Environment == "dev" {
			if err := database.AutoMigrate(&mysql.RunRecordModel{}); err != nil {
				logger.Error(ctx, "Failed to migrate database", "error", err)
			}
		}
		records = mysql.NewRunRecordRepository(database)
	}

	// 5. Kafka（可选，实验事件）
	var publisher domain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to create Kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	}

	// 6. Application
	arenaCapacity := cfg.Pricing.ArenaCapacityMB * 1024 * 1024
	experiments := application.NewExperimentService(
		cfg.Pricing.Workers,
		cfg.Pricing.MaxConcurrentTasks,
		arenaCapacity,
		records,
		publisher,
		m,
	)

	// 7. Interfaces
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	if cfg.HTTP.RateLimitQPS > 0 {
		limiter := middleware.NewRateLimiter(float64(cfg.HTTP.RateLimitQPS), float64(cfg.HTTP.RateLimitQPS))
		router.Use(middleware.GinRateLimitMiddleware(limiter))
	}

	handler := httpserver.NewExperimentHandler(experiments)
	handler.RegisterRoutes(&router.RouterGroup)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().Unix(),
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 8. Start
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(ctx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(ctx, "Shutting down server...")
		case <-gctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
	}
}
