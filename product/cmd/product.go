package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/product/internal/controller"
	"github.com/Alturino/shop/product/internal/otel"
	"github.com/Alturino/shop/product/internal/service"
)

// AttachProductService wires the catalog into router.
func AttachProductService(c context.Context, app *server.App, router *mux.Router) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd AttachProductService").
		Str(log.KeyProcess, "initializing product controller").
		Logger()

	logger.Info().Msg("initializing product controller")
	c = logger.WithContext(c)
	productService := service.NewProductService(app.Store(c), app.Cache(c), app.Config.Cache.TTL)
	controller.AttachProductController(router, productService)
	logger.Info().Msg("initialized product controller")
}

func RunProductService(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunProductService")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppProductService)
	if err != nil {
		return err
	}
	defer app.Close(c)

	app.Store(c)
	app.Cache(c)
	router := server.NewRouter(constants.AppProductService, app.HealthChecks()...)
	AttachProductService(c, app, router)

	return server.Serve(c, app.Config.Application, router)
}
