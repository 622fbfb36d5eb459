package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/product/internal/otel"
	"github.com/Alturino/shop/product/pkg/request"
	"github.com/Alturino/shop/product/pkg/response"
)

const defaultCategory = "other"

type ProductService struct {
	store    *repository.Store
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewProductService(
	store *repository.Store,
	cache *redis.Client,
	cacheTTL time.Duration,
) *ProductService {
	return &ProductService{store: store, cache: cache, cacheTTL: cacheTTL}
}

func insertProductParams(param request.InsertProduct) (repository.InsertProductParams, error) {
	price, err := decimal.NewFromString(param.Price)
	if err != nil {
		return repository.InsertProductParams{}, fmt.Errorf(
			"%w: price=%s is not a decimal",
			commonErrors.ErrInvalidRequest,
			param.Price,
		)
	}
	category := param.Category
	if category == "" {
		category = defaultCategory
	}
	return repository.InsertProductParams{
		ID:          uuid.New(),
		Title:       param.Title,
		Price:       repository.NumericFromDecimal(price),
		Description: param.Description,
		Image:       param.Image,
		Category:    category,
	}, nil
}

func (svc *ProductService) InsertProduct(
	c context.Context,
	param request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "mapping request").Logger()
	arg, err := insertProductParams(param)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Trace().Msg("inserting product to database")
	span.AddEvent("inserting product to database")
	var product repository.Product
	err = svc.store.Run(c, func(c context.Context) error {
		var err error
		product, err = svc.store.InsertProduct(c, arg)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("inserted product to database")
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product to database")

	return product.Response(), nil
}

// Seed inserts the catalog in one transaction. A non-empty catalog is left alone unless force is set.
func (svc *ProductService) Seed(
	c context.Context,
	params []request.InsertProduct,
	force bool,
) (int, error) {
	c, span := otel.Tracer.Start(c, "ProductService Seed")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Seed").
		Int("count", len(params)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "mapping catalog").Logger()
	args := make([]repository.InsertProductParams, 0, len(params))
	for _, p := range params {
		arg, err := insertProductParams(p)
		if err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return 0, err
		}
		args = append(args, arg)
	}

	inserted := 0
	logger = logger.With().Str(log.KeyProcess, "inserting catalog").Logger()
	logger.Info().Msg("inserting catalog")
	err := svc.store.Run(c, func(c context.Context) error {
		inserted = 0
		return svc.store.ExecTx(c, pgx.TxOptions{}, func(q *repository.Queries) error {
			count, err := q.CountProducts(c)
			if err != nil {
				return err
			}
			if count > 0 && !force {
				logger.Info().Int64("existing", count).Msg("catalog is not empty, skipping seed")
				return nil
			}
			for _, arg := range args {
				if _, err := q.InsertProduct(c, arg); err != nil {
					return err
				}
				inserted++
			}
			return nil
		})
	})
	if err != nil {
		err = fmt.Errorf("failed seeding catalog with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Int("inserted", inserted).Msg("inserted catalog")

	return inserted, nil
}

func (svc *ProductService) FindProducts(
	c context.Context,
	param request.FindProducts,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyCategory, param.Category).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	var products []repository.Product
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		if param.Category == "" {
			products, err = svc.store.FindProducts(c)
			return err
		}
		products, err = svc.store.FindProductsByCategory(c, param.Category)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found products in database")
	logger.Info().Int("count", len(products)).Msg("found products in database")

	res := make([]response.Product, 0, len(products))
	for _, p := range products {
		res = append(res, p.Response())
	}
	return res, nil
}

func (svc *ProductService) findProductInCache(
	c context.Context,
	cacheKey string,
) (response.Product, bool) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService findProductInCache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	jsonCache, err := svc.cache.Get(c, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			err = fmt.Errorf("failed getting product from cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
		return response.Product{}, false
	}
	product := response.Product{}
	if err := json.Unmarshal([]byte(jsonCache), &product); err != nil {
		err = fmt.Errorf("failed unmarshaling product from cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return response.Product{}, false
	}
	return product, true
}

func (svc *ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(constants.CacheKeyProduct, id.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	c = logger.WithContext(c)
	if product, ok := svc.findProductInCache(c, cacheKey); ok {
		span.AddEvent("found product in cache")
		logger.Debug().Msg("found product in cache")
		return product, nil
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	var product repository.Product
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		product, err = svc.store.FindProductById(c, id)
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = fmt.Errorf("%w: id=%s", commonErrors.ErrProductNotFound, id.String())
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("found product in database")
	res := product.Response()
	logger.Info().Msg("found product in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	b, err := json.Marshal(res)
	if err == nil {
		err = svc.cache.Set(c, cacheKey, b, svc.cacheTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed inserting product to cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}

	return res, nil
}

// RemoveProduct deletes a product. Cart lines that point at it stay and are skipped from then on.
func (svc *ProductService) RemoveProduct(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService RemoveProduct")
	defer span.End()

	cacheKey := fmt.Sprintf(constants.CacheKeyProduct, id.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService RemoveProduct").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing product in database").Logger()
	logger.Trace().Msg("removing product in database")
	span.AddEvent("removing product in database")
	var product repository.Product
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		product, err = svc.store.DeleteProduct(c, id)
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = fmt.Errorf("%w: id=%s", commonErrors.ErrProductNotFound, id.String())
		} else {
			err = fmt.Errorf("failed removing product with error=%w", err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("removed product in database")
	logger.Info().Msg("removed product in database")

	logger = logger.With().Str(log.KeyProcess, "removing product in cache").Logger()
	if err := svc.cache.Del(c, cacheKey).Err(); err != nil {
		err = fmt.Errorf("failed removing product in cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}

	return product.Response(), nil
}
