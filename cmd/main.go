package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/hilthontt/parley/internal/infrastructure/configs"
	"github.com/hilthontt/parley/internal/infrastructure/logging"
	"github.com/hilthontt/parley/internal/infrastructure/metrics"
	"github.com/hilthontt/parley/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/parley/internal/infrastructure/repository"
	"github.com/hilthontt/parley/internal/infrastructure/tracing"
	"github.com/hilthontt/parley/internal/presentation/api"
	"github.com/hilthontt/parley/internal/presentation/handler/health"
	"github.com/hilthontt/parley/internal/presentation/handler/rooms"
)

const (
	serviceName = "parley"
)

func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Backend,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Endpoint != "" {
		sh, err := tracing.InitTracer(tracing.Config{
			ServiceName: serviceName,
			Environment: cfg.Tracing.Environment,
			Endpoint:    cfg.Tracing.Endpoint,
		})
		if err != nil {
			log.Fatalf("Failed to initialize the tracer: %v", err)
		}
		defer sh(ctx)
	}

	roomRepository := repository.NewRoomRepository(repository.Options{
		Capacity:   cfg.Rooms.Capacity,
		QueueSize:  cfg.Stream.QueueSize,
		MaxMembers: cfg.Rooms.MaxMembers,
		OnDrop:     metrics.SubscribersDropped.Inc,
	})

	reaper := repository.NewReaper(roomRepository, logger, repository.ReaperOptions{
		Interval:     cfg.Rooms.ReapInterval,
		CompletedTTL: cfg.Rooms.CompletedTTL,
		ActiveTTL:    cfg.Rooms.ActiveTTL,
		OnExpire: func() {
			metrics.RoomsExpired.Inc()
			metrics.LiveRooms.Set(float64(roomRepository.Len()))
		},
	})
	go reaper.Run(ctx)

	roomsHandler := rooms.NewHandler(roomRepository, logger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, *roomsHandler, *healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server failed",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
	}
}
