package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/order/internal/controller"
	"github.com/Alturino/shop/order/internal/otel"
	"github.com/Alturino/shop/order/internal/service"
	"github.com/Alturino/shop/order/internal/worker"
)

const publishQueueSize = 1024

// AttachOrderService wires checkout and order history into router. The event publisher runs
// until c is done and is tracked by wg.
func AttachOrderService(
	c context.Context,
	app *server.App,
	router *mux.Router,
	wg *sync.WaitGroup,
) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd AttachOrderService").
		Str(log.KeyEventDriver, app.Config.Event.Driver).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing event publisher").Logger()
	logger.Info().Msg("initializing event publisher")
	publisher, err := event.NewPublisher(app.Config.Event, app.Cache(c))
	if err != nil {
		err = fmt.Errorf("failed initializing event publisher with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	publishWorker := worker.NewPublishWorker(publisher, publishQueueSize)
	app.OnClose(publishWorker.Close)
	wg.Add(1)
	c = logger.WithContext(c)
	go publishWorker.Start(c, wg)
	logger.Info().Msg("initialized event publisher")

	logger = logger.With().Str(log.KeyProcess, "initializing order controller").Logger()
	logger.Info().Msg("initializing order controller")
	orderService := service.NewOrderService(
		app.Store(c),
		app.Cache(c),
		app.Config.Cache.TTL,
		publishWorker,
	)
	controller.AttachOrderController(router, orderService, app.Tokens())
	logger.Info().Msg("initialized order controller")
	return nil
}

func RunOrderService(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunOrderService")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppOrderService)
	if err != nil {
		return err
	}
	defer app.Close(c)

	app.Store(c)
	app.Cache(c)
	router := server.NewRouter(constants.AppOrderService, app.HealthChecks()...)
	return server.Run(
		c,
		func(c context.Context, wg *sync.WaitGroup) error {
			return AttachOrderService(c, app, router, wg)
		},
		func(c context.Context) error {
			return server.Serve(c, app.Config.Application, router)
		},
	)
}
