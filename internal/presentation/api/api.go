package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/relay/internal/infrastructure/configs"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
	"github.com/hilthontt/relay/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/relay/internal/presentation/handler/health"
	messagesHandler "github.com/hilthontt/relay/internal/presentation/handler/messages"
	roomHandler "github.com/hilthontt/relay/internal/presentation/handler/rooms"
	streamHandler "github.com/hilthontt/relay/internal/presentation/handler/streams"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Application struct {
	config          configs.Config
	roomHandler     *roomHandler.Handler
	messagesHandler *messagesHandler.Handler
	streamHandler   *streamHandler.Handler
	healthHandler   *healthHandler.Handler
	metrics         *metrics.Metrics
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomHandler *roomHandler.Handler,
	messagesHandler *messagesHandler.Handler,
	streamHandler *streamHandler.Handler,
	healthHandler *healthHandler.Handler,
	metrics *metrics.Metrics,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		roomHandler:     roomHandler,
		messagesHandler: messagesHandler,
		streamHandler:   streamHandler,
		healthHandler:   healthHandler,
		metrics:         metrics,
		logger:          logger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.enableCors)
	r.Use(app.metricsMiddleware)

	r.Handle("/metrics", app.metrics.Handler())
	r.Handle("/debug/vars", expvar.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			// Streams stay open indefinitely and manage their own deadlines.
			r.Get("/{roomId}/events", app.streamHandler.EventsHandler)
			r.Get("/{roomId}/ws", app.streamHandler.WebSocketHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))

				r.With(app.rateLimiterMiddleware).Post("/", app.roomHandler.CreateRoomHandler)
				r.With(app.rateLimiterMiddleware).Post("/join", app.roomHandler.JoinRoomHandler)
				r.Get("/{roomId}", app.roomHandler.GetRoomHandler)

				r.With(app.rateLimiterMiddleware).Post("/{roomId}/messages", app.messagesHandler.CreateNewMessageHandler)
				r.Get("/{roomId}/messages", app.messagesHandler.GetMessagesHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/stats", app.healthHandler.GetStats)

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})
	})

	return otelhttp.NewHandler(r, "relay",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}),
	)
}

func (app *Application) Run(mux http.Handler) error {
	// Cancelled before Shutdown so open streams return and let it finish.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:         net.JoinHostPort(app.config.HTTP.Host, fmt.Sprint(app.config.HTTP.Port)),
		Handler:      mux,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  app.config.HTTP.IdleTimeout,
		WriteTimeout: 30 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		cancelStreams()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
