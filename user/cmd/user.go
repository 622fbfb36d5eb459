package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/auth"
	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/user/internal/controller"
	"github.com/Alturino/shop/user/internal/otel"
	"github.com/Alturino/shop/user/internal/service"
)

// AttachUserService wires registration, login and the current user into router.
func AttachUserService(c context.Context, app *server.App, router *mux.Router) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd AttachUserService").
		Str(log.KeyProcess, "initializing user controller").
		Logger()

	logger.Info().Msg("initializing user controller")
	c = logger.WithContext(c)
	tokens := app.Tokens()
	userService := service.NewUserService(
		app.Store(c),
		auth.NewCredentialHasher(app.Config.Application.HashCost),
		tokens,
	)
	controller.AttachUserController(router, userService, tokens)
	logger.Info().Msg("initialized user controller")
}

func RunUserService(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunUserService")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppUserService)
	if err != nil {
		return err
	}
	defer app.Close(c)

	app.Store(c)
	router := server.NewRouter(constants.AppUserService, app.HealthChecks()...)
	AttachUserService(c, app, router)

	return server.Serve(c, app.Config.Application, router)
}
