package controller

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/common/validate"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/product/internal/otel"
	"github.com/Alturino/shop/product/internal/service"
	"github.com/Alturino/shop/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

func AttachProductController(mux *mux.Router, service *service.ProductService) {
	controller := ProductController{service}

	router := mux.PathPrefix("/products").Subrouter()
	router.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/{productId}", controller.FindProductById).Methods(http.MethodGet)
}

func (p ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating query").Logger()
	param := request.FindProducts{Category: r.URL.Query().Get("category")}
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: %w", commonErrors.ErrInvalidRequest, err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	span.SetAttributes(attribute.String(log.KeyCategory, param.Category))

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Trace().Msg("finding products")
	c = logger.WithContext(c)
	products, err := p.service.FindProducts(c, param)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found products")

	inHttp.WriteSuccess(c, w, http.StatusOK, "products found", map[string]interface{}{
		"products": products,
	})
}

func (p ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue productId").Logger()
	logger.Trace().Msg("getting pathValue productId")
	id, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("%w: productId is not a valid id", commonErrors.ErrInvalidRequest)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, id.String()).Logger()
	span.SetAttributes(attribute.String(log.KeyProductID, id.String()))

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	c = logger.WithContext(c)
	product, err := p.service.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found product")

	inHttp.WriteSuccess(c, w, http.StatusOK, fmt.Sprintf("product id=%s found", id), map[string]interface{}{
		"product": product,
	})
}
