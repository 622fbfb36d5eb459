package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/config"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/middleware"
)

const healthCheckTimeout = 2 * time.Second

type HealthCheck func(c context.Context) error

// NewRouter returns a router with tracing, logging, panic recovery and request metrics,
// serving /metrics and /healthz.
func NewRouter(name string, checks ...HealthCheck) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(name),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Metrics,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthz(checks)).Methods(http.MethodGet)
	return router
}

func healthz(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "server healthz").Logger()
		for _, check := range checks {
			if err := check(c); err != nil {
				err = fmt.Errorf("%w: %w", commonErrors.ErrStoreUnavailable, err)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteError(c, w, err)
				return
			}
		}
		inHttp.WriteSuccess(c, w, http.StatusOK, "healthy", nil)
	}
}

// Run starts background workers with start and then blocks in serve. When serve returns,
// for any reason, the workers' context is cancelled and Run waits for them to stop.
func Run(
	c context.Context,
	start func(c context.Context, wg *sync.WaitGroup) error,
	serve func(c context.Context) error,
) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	c, cancel := context.WithCancel(c)
	defer cancel()

	if err := start(c, &wg); err != nil {
		return err
	}
	return serve(c)
}

// Serve listens until c is done, then shuts the server down gracefully.
func Serve(c context.Context, cfg config.Application, handler http.Handler) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "server Serve").Logger()

	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(c) },
		Handler:      handler,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		err = fmt.Errorf("error=%w occured while server is running", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	case <-c.Done():
	}

	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown http server")
	return nil
}
