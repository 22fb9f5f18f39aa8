package main

import (
	"context"
	"expvar"
	"log"
	"os"
	"runtime"

	"github.com/hilthontt/relay/internal/application/relay"
	"github.com/hilthontt/relay/internal/infrastructure/configs"
	"github.com/hilthontt/relay/internal/infrastructure/events"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/messaging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
	"github.com/hilthontt/relay/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/relay/internal/infrastructure/repository"
	"github.com/hilthontt/relay/internal/infrastructure/stream"
	"github.com/hilthontt/relay/internal/infrastructure/tracing"
	"github.com/hilthontt/relay/internal/presentation/api"
	"github.com/hilthontt/relay/internal/presentation/handler/health"
	"github.com/hilthontt/relay/internal/presentation/handler/messages"
	"github.com/hilthontt/relay/internal/presentation/handler/rooms"
	"github.com/hilthontt/relay/internal/presentation/handler/streams"
	"github.com/joho/godotenv"
)

const serviceName = "relay"

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := configs.DetermineConfigPath(os.Args[1:])
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	defer logger.Sync()

	logger.Info(logging.General, logging.Startup, "configuration loaded", map[logging.ExtraKey]any{
		"config": configPath,
	})

	shutdownTracer, err := tracing.InitTracer(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: serviceName,
		Environment: cfg.Tracing.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to initialise tracing", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer shutdownTracer(context.Background())

	m := metrics.New()

	var publisher events.Publisher = events.NewNopPublisher()
	if cfg.AMQP.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI, cfg.AMQP.Exchange)
		if err != nil {
			// Lifecycle events are best effort; the relay runs without them.
			logger.Error(logging.RabbitMQ, logging.Startup, "rabbitmq unavailable, lifecycle events disabled", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		} else {
			defer rabbitmq.Close()
			publisher = events.NewRoomPublisher(rabbitmq)
		}
	}

	roomRepository := repository.NewRoomRepository()

	service := relay.NewService(relay.Config{
		Repository: roomRepository,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     logger,
		Tracer:     tracing.GetTracer(serviceName),
	})

	streamer := stream.NewStreamer(stream.Config{
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		WriteWait:         cfg.Stream.WriteWait,
		Retry:             cfg.Stream.Retry,
		BufferSize:        cfg.Stream.BufferSize,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
	}, logger, m)

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(
		*cfg,
		rooms.NewHandler(service, logger),
		messages.NewHandler(service, logger),
		streams.NewHandler(service, streamer, logger),
		health.NewHandler(service, logger),
		m,
		logger,
		rateLimiter,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server stopped with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
