package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/cart/internal/controller"
	"github.com/Alturino/shop/cart/internal/otel"
	"github.com/Alturino/shop/cart/internal/service"
	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
)

// AttachCartService wires the cart ledger into router.
func AttachCartService(c context.Context, app *server.App, router *mux.Router) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd AttachCartService").
		Str(log.KeyProcess, "initializing cart controller").
		Logger()

	logger.Info().Msg("initializing cart controller")
	c = logger.WithContext(c)
	cartService := service.NewCartService(app.Store(c))
	controller.AttachCartController(router, cartService, app.Tokens())
	logger.Info().Msg("initialized cart controller")
}

func RunCartService(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunCartService")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppCartService)
	if err != nil {
		return err
	}
	defer app.Close(c)

	app.Store(c)
	router := server.NewRouter(constants.AppCartService, app.HealthChecks()...)
	AttachCartService(c, app, router)

	return server.Serve(c, app.Config.Application, router)
}
