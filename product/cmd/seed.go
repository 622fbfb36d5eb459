package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/common/validate"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/server"
	"github.com/Alturino/shop/product/internal/otel"
	"github.com/Alturino/shop/product/internal/service"
	"github.com/Alturino/shop/product/pkg/request"
)

// ReadCatalog decodes and validates every entry of a JSON catalog file.
func ReadCatalog(c context.Context, filename string) ([]request.InsertProduct, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed reading catalog=%s with error=%w", filename, err)
	}
	catalog := []request.InsertProduct{}
	if err := json.Unmarshal(b, &catalog); err != nil {
		return nil, fmt.Errorf("failed decoding catalog=%s with error=%w", filename, err)
	}
	for i, p := range catalog {
		if err := validate.Get().StructCtx(c, p); err != nil {
			return nil, fmt.Errorf("failed validating catalog entry=%d with error=%w", i, err)
		}
	}
	return catalog, nil
}

func RunSeed(c context.Context, filename string, force bool) error {
	c, span := otel.Tracer.Start(c, "RunSeed")
	defer span.End()

	c, app, err := server.NewApp(c, constants.AppShop)
	if err != nil {
		return err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cmd RunSeed").
		Str(log.KeyFilename, filename).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading catalog").Logger()
	logger.Info().Msg("reading catalog")
	catalog, err := ReadCatalog(c, filename)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyProducts, len(catalog)).Msg("read catalog")

	logger = logger.With().Str(log.KeyProcess, "seeding catalog").Logger()
	c = logger.WithContext(c)
	productService := service.NewProductService(app.Store(c), app.Cache(c), app.Config.Cache.TTL)
	inserted, err := productService.Seed(c, catalog, force)
	if err != nil {
		err = fmt.Errorf("failed seeding catalog with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyProducts, inserted).Msg("seeded catalog")
	return nil
}
