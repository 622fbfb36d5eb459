package cmd

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	cartCmd "github.com/Alturino/shop/cart/cmd"
	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
	"github.com/Alturino/shop/internal/server"
	orderCmd "github.com/Alturino/shop/order/cmd"
	productCmd "github.com/Alturino/shop/product/cmd"
	userCmd "github.com/Alturino/shop/user/cmd"
)

// RunShop serves every domain from one process against one database.
func RunShop(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RunShop")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppShop)
	if err != nil {
		return err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd RunShop").
		Str(log.KeyProcess, "attaching controllers").
		Logger()

	app.Store(c)
	app.Cache(c)
	router := server.NewRouter(constants.AppShop, app.HealthChecks()...)

	attach := func(c context.Context, wg *sync.WaitGroup) error {
		logger.Info().Msg("attaching controllers")
		c = logger.WithContext(c)
		userCmd.AttachUserService(c, app, router)
		productCmd.AttachProductService(c, app, router)
		cartCmd.AttachCartService(c, app, router)
		if err := orderCmd.AttachOrderService(c, app, router, wg); err != nil {
			commonErrors.HandleError(err, span)
			return err
		}
		logger.Info().Msg("attached controllers")
		return nil
	}
	serve := func(c context.Context) error {
		return server.Serve(c, app.Config.Application, router)
	}
	return server.Run(c, attach, serve)
}
