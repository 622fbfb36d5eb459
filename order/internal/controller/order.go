package controller

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/middleware"
	"github.com/Alturino/shop/order/internal/otel"
	"github.com/Alturino/shop/order/internal/service"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(
	mux *mux.Router,
	service *service.OrderService,
	verifier middleware.TokenVerifier,
) {
	controller := OrderController{service: service}

	router := mux.PathPrefix("/orders").Subrouter()
	router.Use(middleware.Auth(verifier))
	router.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func (ctrl OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController Checkout").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "checking out").Logger()
	logger.Trace().Msg("checking out")
	c = logger.WithContext(c)
	order, err := ctrl.service.Checkout(c, userID)
	if err != nil {
		err = fmt.Errorf("failed checking out with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("checked out")

	inHttp.WriteSuccess(c, w, http.StatusCreated, "order created", map[string]interface{}{
		"order": order,
	})
}

func (ctrl OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrders").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Trace().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := ctrl.service.FindOrders(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	inHttp.WriteSuccess(c, w, http.StatusOK, "orders found", map[string]interface{}{
		"orders": orders,
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrderById").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating orderId").Logger()
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("%w: orderId is not a valid id", commonErrors.ErrInvalidRequest)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "finding order by id").
		Str(log.KeyOrderID, orderID.String()).
		Logger()
	logger.Trace().Msg("finding order by id")
	c = logger.WithContext(c)
	order, err := ctrl.service.FindOrderById(c, userID, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found order by id")

	inHttp.WriteSuccess(c, w, http.StatusOK, "order found", map[string]interface{}{
		"order": order,
	})
}
