package controller

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/cart/internal/otel"
	"github.com/Alturino/shop/cart/internal/service"
	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/middleware"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(
	mux *mux.Router,
	service *service.CartService,
	verifier middleware.TokenVerifier,
) {
	controller := CartController{service}

	router := mux.PathPrefix("/carts").Subrouter()
	router.Use(middleware.Auth(verifier))
	router.HandleFunc("", controller.ListCart).Methods(http.MethodGet)
	router.HandleFunc("/items/{productId}", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}/decrement", controller.DecrementItem).
		Methods(http.MethodPatch)
	router.HandleFunc("/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
}

// identity reads the authenticated user and the productId path value.
func identity(r *http.Request) (userID uuid.UUID, productID uuid.UUID, err error) {
	userID, err = auth.UserIDFromContext(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	productID, err = uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf(
			"%w: productId is not a valid id",
			commonErrors.ErrInvalidRequest,
		)
	}
	return userID, productID, nil
}

func (ctrl CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController AddItem").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, productID, err := identity(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	logger.Trace().Msg("adding item")
	c = logger.WithContext(c)
	item, err := ctrl.service.AddItem(c, userID, productID)
	if err != nil {
		err = fmt.Errorf("failed adding item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("added item")

	inHttp.WriteSuccess(c, w, http.StatusOK, "item added to cart", map[string]interface{}{
		"item": item,
	})
}

func (ctrl CartController) DecrementItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController DecrementItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController DecrementItem").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, productID, err := identity(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decrementing item").Logger()
	logger.Trace().Msg("decrementing item")
	c = logger.WithContext(c)
	item, err := ctrl.service.DecrementItem(c, userID, productID)
	if err != nil {
		err = fmt.Errorf("failed decrementing item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("decremented item")

	inHttp.WriteSuccess(c, w, http.StatusOK, "item decremented", map[string]interface{}{
		"item": item,
	})
}

func (ctrl CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveItem").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, productID, err := identity(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing item").Logger()
	logger.Trace().Msg("removing item")
	c = logger.WithContext(c)
	if err := ctrl.service.RemoveItem(c, userID, productID); err != nil {
		err = fmt.Errorf("failed removing item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("removed item")

	inHttp.WriteSuccess(c, w, http.StatusOK, "item removed from cart", nil)
}

func (ctrl CartController) ListCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ListCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController ListCart").Logger()

	logger = logger.With().Str(log.KeyProcess, "reading identity").Logger()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "listing cart").Logger()
	logger.Trace().Msg("listing cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.ListCart(c, userID)
	if err != nil {
		err = fmt.Errorf("failed listing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("listed cart")

	inHttp.WriteSuccess(c, w, http.StatusOK, "cart found", map[string]interface{}{
		"cart": cart,
	})
}
