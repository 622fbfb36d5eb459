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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/order/internal/otel"
	"github.com/Alturino/shop/order/pkg/response"
)

type OrderService struct {
	store     *repository.Store
	cache     *redis.Client
	cacheTTL  time.Duration
	publisher event.Publisher
	metrics   otel.CheckoutMetrics
}

func NewOrderService(
	store *repository.Store,
	cache *redis.Client,
	cacheTTL time.Duration,
	publisher event.Publisher,
) *OrderService {
	return &OrderService{
		store:     store,
		cache:     cache,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		metrics:   otel.NewCheckoutMetrics(),
	}
}

// computeTotal sums price times quantity over the checked out lines.
func computeTotal(lines []repository.FindCartLinesByUserIdRow) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		price := repository.DecimalFromNumeric(l.Price)
		total = total.Add(price.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

func orderItemParams(
	orderID uuid.UUID,
	lines []repository.FindCartLinesByUserIdRow,
) ([]repository.InsertOrderItemsParams, []uuid.UUID) {
	params := make([]repository.InsertOrderItemsParams, 0, len(lines))
	productIDs := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		params = append(params, repository.InsertOrderItemsParams{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
		productIDs = append(productIDs, l.ProductID)
	}
	return params, productIDs
}

// Checkout turns the cart of userID into an order. Reading the lines, inserting the order
// and deleting exactly the lines it was built from happen in one transaction, so either all
// of it is visible or none of it is. Lines added after the read are kept for the next cart.
func (s *OrderService) Checkout(c context.Context, userID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout", trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Str(log.KeyUserID, userID.String()).
		Logger()

	var (
		order repository.Order
		items []repository.InsertOrderItemsParams
	)
	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Trace().Msg("checking out cart")
	span.AddEvent("checking out cart")
	c = logger.WithContext(c)
	err := s.store.Run(c, func(c context.Context) error {
		return s.store.ExecTx(
			c,
			pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
			func(q *repository.Queries) error {
				lines, err := q.FindCartLinesByUserIdForUpdate(c, userID)
				if err != nil {
					return fmt.Errorf("failed locking cart lines with error=%w", err)
				}
				if len(lines) == 0 {
					return commonErrors.ErrEmptyCart
				}

				orderID, err := uuid.NewV7()
				if err != nil {
					return fmt.Errorf("failed generating order id with error=%w", err)
				}
				order, err = q.InsertOrder(c, repository.InsertOrderParams{
					ID:         orderID,
					UserID:     userID,
					TotalPrice: repository.NumericFromDecimal(computeTotal(lines)),
				})
				if err != nil {
					return fmt.Errorf("failed inserting order with error=%w", err)
				}

				var productIDs []uuid.UUID
				items, productIDs = orderItemParams(order.ID, lines)
				if _, err := q.InsertOrderItems(c, items); err != nil {
					return fmt.Errorf("failed inserting order items with error=%w", err)
				}

				deleted, err := q.DeleteCartLinesByProductIds(
					c,
					repository.DeleteCartLinesByProductIdsParams{UserID: userID, ProductIDs: productIDs},
				)
				if err != nil {
					return fmt.Errorf("failed clearing cart lines with error=%w", err)
				}
				if deleted != int64(len(productIDs)) {
					return fmt.Errorf(
						"%w: cleared %d cart lines, expected %d",
						commonErrors.ErrConflict,
						deleted,
						len(productIDs),
					)
				}
				return nil
			},
		)
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrEmptyCart) {
			s.metrics.Record(c, otel.OutcomeEmptyCart, 0)
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		s.metrics.Record(c, otel.OutcomeFailed, 0)
		err = fmt.Errorf("failed checking out cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("checked out cart")
	res := order.Response()
	res.OrderItems = make([]response.OrderItem, 0, len(items))
	for _, i := range items {
		res.OrderItems = append(res.OrderItems, repository.OrderItem{
			ID:        i.ID,
			OrderID:   i.OrderID,
			ProductID: i.ProductID,
			Title:     i.Title,
			Price:     i.Price,
			Quantity:  i.Quantity,
		}.Response())
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyOrderTotal, res.TotalPrice.String()).
		Logger()
	logger.Info().Msg("checked out cart")

	c = logger.WithContext(c)
	s.afterCheckout(c, res)

	return res, nil
}

// afterCheckout runs the side effects of a committed order. Failures are only logged.
func (s *OrderService) afterCheckout(c context.Context, order response.Order) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderService afterCheckout").Logger()

	total, _ := order.TotalPrice.Float64()
	s.metrics.Record(c, otel.OutcomeSuccess, total)

	logger = logger.With().Str(log.KeyProcess, "invalidating order history cache").Logger()
	versionKey := fmt.Sprintf(constants.CacheKeyUserOrdersVersion, order.UserID.String())
	if err := s.cache.Incr(c, versionKey).Err(); err != nil {
		err = fmt.Errorf("failed invalidating order history cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "publishing order created").Logger()
	e, err := event.NewEnvelope(c, constants.EventOrderCreated, event.OrderCreated{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		ItemCount:  len(order.OrderItems),
		CreatedAt:  order.CreatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(c, order.UserID.String(), e)
	}
	if err != nil {
		err = fmt.Errorf("failed publishing order created with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Debug().Msg("published order created")
}

func (s *OrderService) ordersCacheKey(c context.Context, userID uuid.UUID) (string, error) {
	versionKey := fmt.Sprintf(constants.CacheKeyUserOrdersVersion, userID.String())
	version, err := s.cache.Get(c, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf(constants.CacheKeyUserOrders, userID.String(), version), nil
}

// FindOrders returns the orders of userID, newest first.
func (s *OrderService) FindOrders(c context.Context, userID uuid.UUID) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders", trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders in cache").Logger()
	cacheKey, err := s.ordersCacheKey(c, userID)
	if err != nil {
		err = fmt.Errorf("failed reading order history version with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	} else {
		logger = logger.With().Str(log.KeyCacheKey, cacheKey).Logger()
		jsonCache, err := s.cache.Get(c, cacheKey).Result()
		if err == nil {
			orders := []response.Order{}
			if err := json.Unmarshal([]byte(jsonCache), &orders); err == nil {
				span.AddEvent("found orders in cache")
				logger.Debug().Msg("found orders in cache")
				return orders, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			err = fmt.Errorf("failed getting orders from cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders in database").Logger()
	logger.Trace().Msg("finding orders in database")
	span.AddEvent("finding orders in database")
	var rows []repository.Order
	err = s.store.Run(c, func(c context.Context) error {
		var err error
		rows, err = s.store.FindOrdersByUserId(c, userID)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found orders in database")
	logger.Info().Int(log.KeyOrders, len(rows)).Msg("found orders in database")

	orders := make([]response.Order, 0, len(rows))
	for _, o := range rows {
		orders = append(orders, o.Response())
	}

	if cacheKey != "" {
		logger = logger.With().Str(log.KeyProcess, "inserting orders to cache").Logger()
		b, err := json.Marshal(orders)
		if err == nil {
			err = s.cache.Set(c, cacheKey, b, s.cacheTTL).Err()
		}
		if err != nil {
			err = fmt.Errorf("failed inserting orders to cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
	}

	return orders, nil
}

// FindOrderById returns an order of userID with its items. Orders of other users are not found.
func (s *OrderService) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById", trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
		attribute.String(log.KeyOrderID, orderID.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Trace().Msg("finding order by id")
	var (
		order repository.Order
		items []repository.OrderItem
	)
	err := s.store.Run(c, func(c context.Context) error {
		var err error
		order, err = s.store.FindOrderById(c, repository.FindOrderByIdParams{ID: orderID, UserID: userID})
		if err != nil {
			return err
		}
		items, err = s.store.FindOrderItemsByOrderId(c, orderID)
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = fmt.Errorf("%w: id=%s", commonErrors.ErrOrderNotFound, orderID.String())
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Int(log.KeyOrderItems, len(items)).Msg("found order by id")

	res := order.Response()
	res.OrderItems = make([]response.OrderItem, 0, len(items))
	for _, i := range items {
		res.OrderItems = append(res.OrderItems, i.Response())
	}
	return res, nil
}
