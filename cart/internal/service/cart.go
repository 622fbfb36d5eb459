package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/shop/cart/internal/otel"
	"github.com/Alturino/shop/cart/pkg/response"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/repository"
)

type CartService struct {
	store *repository.Store
}

func NewCartService(store *repository.Store) *CartService {
	return &CartService{store: store}
}

func startSpan(
	c context.Context,
	name string,
	userID uuid.UUID,
	productID uuid.UUID,
) (context.Context, trace.Span) {
	return otel.Tracer.Start(c, name, trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
		attribute.String(log.KeyProductID, productID.String()),
	))
}

// AddItem increments the line for productId, creating it with quantity 1 when absent.
func (svc *CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (response.Item, error) {
	c, span := startSpan(c, "CartService AddItem", userID, productID)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "upserting cart line").Logger()
	logger.Trace().Msg("upserting cart line")
	span.AddEvent("upserting cart line")
	var line repository.CartLine
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		line, err = svc.store.UpsertCartLine(c, repository.CartLineKey{
			UserID:    userID,
			ProductID: productID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = fmt.Errorf("%w: id=%s", commonErrors.ErrProductNotFound, productID.String())
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Item{}, err
		}
		err = fmt.Errorf("failed upserting cart line with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Item{}, err
	}
	span.AddEvent("upserted cart line")
	logger.Info().Int32(log.KeyCartLineQuantity, line.Quantity).Msg("upserted cart line")

	return line.Response(), nil
}

// DecrementItem lowers the quantity by one and deletes the line when it would reach zero.
// A missing line is not an error.
func (svc *CartService) DecrementItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (response.Item, error) {
	c, span := startSpan(c, "CartService DecrementItem", userID, productID)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService DecrementItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	key := repository.CartLineKey{UserID: userID, ProductID: productID}
	item := response.Item{ProductID: productID}

	logger = logger.With().Str(log.KeyProcess, "decrementing cart line").Logger()
	logger.Trace().Msg("decrementing cart line")
	span.AddEvent("decrementing cart line")
	c = logger.WithContext(c)
	err := svc.store.Run(c, func(c context.Context) error {
		item.Quantity = 0
		return svc.store.ExecTx(c, pgx.TxOptions{}, func(q *repository.Queries) error {
			line, err := q.FindCartLineForUpdate(c, key)
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Debug().Msg("cart line is absent, nothing to decrement")
				return nil
			}
			if err != nil {
				return err
			}
			if line.Quantity > 1 {
				line, err = q.DecrementCartLine(c, key)
				if err != nil {
					return err
				}
				item.Quantity = line.Quantity
				return nil
			}
			_, err = q.DeleteCartLine(c, key)
			return err
		})
	})
	if err != nil {
		err = fmt.Errorf("failed decrementing cart line with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Item{}, err
	}
	span.AddEvent("decremented cart line")
	logger.Info().Int32(log.KeyCartLineQuantity, item.Quantity).Msg("decremented cart line")

	return item, nil
}

// RemoveItem deletes the line whatever its quantity. A missing line is not an error.
func (svc *CartService) RemoveItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) error {
	c, span := startSpan(c, "CartService RemoveItem", userID, productID)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting cart line").Logger()
	logger.Trace().Msg("deleting cart line")
	span.AddEvent("deleting cart line")
	var deleted int64
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		deleted, err = svc.store.DeleteCartLine(c, repository.CartLineKey{
			UserID:    userID,
			ProductID: productID,
		})
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed deleting cart line with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("deleted cart line")
	logger.Info().Int64("deleted", deleted).Msg("deleted cart line")

	return nil
}

// ListCart returns the lines joined with the current product data. Lines whose product
// was removed are left out.
func (svc *CartService) ListCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ListCart", trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ListCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart lines").Logger()
	logger.Trace().Msg("finding cart lines")
	span.AddEvent("finding cart lines")
	var rows []repository.FindCartLinesByUserIdRow
	err := svc.store.Run(c, func(c context.Context) error {
		var err error
		rows, err = svc.store.FindCartLinesByUserId(c, userID)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed finding cart lines with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("found cart lines")
	logger.Info().Int(log.KeyCartLines, len(rows)).Msg("found cart lines")

	lines := make([]response.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.Response())
	}
	return response.NewCart(userID, lines), nil
}
