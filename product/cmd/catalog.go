package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/common/validate"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/product/internal/otel"
	"github.com/Alturino/shop/product/internal/service"
	"github.com/Alturino/shop/product/pkg/request"
	"github.com/Alturino/shop/product/pkg/response"
)

// RunInsertProduct adds one product to the catalog.
func RunInsertProduct(c context.Context, param request.InsertProduct) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "RunInsertProduct")
	defer span.End()

	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: %w", commonErrors.ErrInvalidRequest, err)
		commonErrors.HandleError(err, span)
		return response.Product{}, err
	}

	c, app, err := server.NewApp(c, constants.AppShop)
	if err != nil {
		return response.Product{}, err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd RunInsertProduct").
		Str(log.KeyProcess, "inserting product").
		Logger()

	logger.Info().Msg("inserting product")
	c = logger.WithContext(c)
	productService := service.NewProductService(app.Store(c), app.Cache(c), app.Config.Cache.TTL)
	product, err := productService.InsertProduct(c, param)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")
	return product, nil
}

// RunRemoveProduct deletes a product and evicts it from the cache.
func RunRemoveProduct(c context.Context, productID string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "RunRemoveProduct")
	defer span.End()

	id, err := uuid.Parse(productID)
	if err != nil {
		err = fmt.Errorf("%w: productId=%s is not a uuid", commonErrors.ErrInvalidRequest, productID)
		commonErrors.HandleError(err, span)
		return response.Product{}, err
	}

	c, app, err := server.NewApp(c, constants.AppShop)
	if err != nil {
		return response.Product{}, err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd RunRemoveProduct").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "removing product").
		Logger()

	logger.Info().Msg("removing product")
	c = logger.WithContext(c)
	productService := service.NewProductService(app.Store(c), app.Cache(c), app.Config.Cache.TTL)
	product, err := productService.RemoveProduct(c, id)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("removed product")
	return product, nil
}
