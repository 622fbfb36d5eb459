package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/notification/internal/otel"
	"github.com/Alturino/shop/notification/internal/service"
)

// RunNotificationService consumes order events and serves /healthz and /metrics.
func RunNotificationService(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunNotificationService")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppNotificationService)
	if err != nil {
		return err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd RunNotificationService").
		Str(log.KeyEventDriver, app.Config.Event.Driver).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing event subscriber").Logger()
	logger.Info().Msg("initializing event subscriber")
	var cache *redis.Client
	if app.Config.Event.Driver == config.EventDriverRedis {
		cache = app.Cache(c)
	}
	subscriber, err := event.NewSubscriber(app.Config.Event, cache)
	if err != nil {
		err = fmt.Errorf("failed initializing event subscriber with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	app.OnClose(subscriber.Close)
	logger.Info().Msg("initialized event subscriber")

	router := server.NewRouter(constants.AppNotificationService, app.HealthChecks()...)
	notificationService := service.NewNotificationService(subscriber)

	g, gc := errgroup.WithContext(c)
	g.Go(func() error { return notificationService.Run(gc) })
	g.Go(func() error { return server.Serve(gc, app.Config.Application, router) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
