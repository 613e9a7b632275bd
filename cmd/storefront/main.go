package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fjod/go_bakery/internal/cache"
	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/checkout"
	"github.com/fjod/go_bakery/internal/config"
	h "github.com/fjod/go_bakery/internal/http"
	"github.com/fjod/go_bakery/internal/logger"
	"github.com/fjod/go_bakery/internal/poller"
	"github.com/fjod/go_bakery/internal/publisher"
	"github.com/fjod/go_bakery/internal/repository"
	"github.com/fjod/go_bakery/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1MB

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.L().Fatal("failed to create logger", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatal("failed to open catalog", zap.Error(err))
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	ingredients, err := catalog.LoadIngredients(ctx, catalogRepo)
	if err != nil {
		log.Fatal("failed to load ingredients", zap.Error(err))
	}
	log.Info("catalog ready", zap.String("path", cfg.CatalogDBPath), zap.Int("ingredients", len(ingredients.All())))

	// Cart persistence
	mongoDB, err := repository.OpenCartDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	repo := repository.NewMongoRepository(mongoDB)
	if err := repository.CreateIndexes(ctx, repo); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cache is optional, reads fall through to MongoDB
		log.Warn("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	snapshots := service.NewSnapshotService(repo, cache.NewRedisCache(redisClient), service.BreakerConfig{
		ConsecutiveFailures: cfg.BreakerFailures,
		OpenTimeout:         cfg.BreakerOpenTimeout,
		HalfOpenRequests:    1,
	}, log)

	// Submission
	sink := publisher.NewKafkaSink(log, cfg.KafkaBrokers...)
	defer sink.Close()

	orderPoller := poller.NewPoller(snapshots, log, cfg.KafkaGroupID, cfg.KafkaBrokers...)
	go orderPoller.Run(ctx)

	registry := checkout.NewRegistry(snapshots, checkout.NewValidator(time.Now), sink, log)
	defer registry.Close()

	// HTTP
	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: maxRequestBodySize,
	}, log,
		h.NewProductHandler(catalogRepo, ingredients, cfg.RequestTimeout),
		h.NewCartHandler(registry, catalogRepo, cfg.RequestTimeout),
		h.NewCheckoutHandler(registry, ingredients, cfg.RequestTimeout),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// gRPC health for orchestrators
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	go func() {
		log.Info("health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("failed to serve", zap.Error(err))
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	<-ctx.Done()

	log.Info("shutting down storefront...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	orderPoller.Close()
	if err := repository.CloseCartDatabase(shutdownCtx, mongoDB); err != nil {
		log.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}

	log.Info("storefront stopped")
}
