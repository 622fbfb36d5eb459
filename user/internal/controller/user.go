package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/common/validate"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/middleware"
	"github.com/Alturino/shop/user/internal/otel"
	"github.com/Alturino/shop/user/internal/service"
	"github.com/Alturino/shop/user/pkg/request"
)

type UserController struct {
	service *service.UserService
}

func AttachUserController(
	mux *mux.Router,
	service *service.UserService,
	verifier middleware.TokenVerifier,
) {
	controller := UserController{service: service}

	router := mux.PathPrefix("/users").Subrouter()
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)

	me := router.PathPrefix("/me").Subrouter()
	me.Use(middleware.Auth(verifier))
	me.HandleFunc("", controller.Me).Methods(http.MethodGet)
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", commonErrors.ErrInvalidRequest)
	}
	if err := validate.Get().StructCtx(r.Context(), v); err != nil {
		return fmt.Errorf("%w: %s", commonErrors.ErrInvalidRequest, err.Error())
	}
	return nil
}

func (ctrl UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Login").Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	reqBody := request.Login{}
	if err := decode(r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	c = logger.WithContext(c)
	login, err := ctrl.service.Login(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("logged in")

	inHttp.WriteSuccess(c, w, http.StatusOK, "login success", map[string]interface{}{
		"login": login,
	})
}

func (ctrl UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Register").Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	reqBody := request.Register{}
	if err := decode(r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	c = logger.WithContext(c)
	user, err := ctrl.service.Register(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("registered user")

	inHttp.WriteSuccess(c, w, http.StatusCreated, "user registered", map[string]interface{}{
		"user": user,
	})
}

func (ctrl UserController) Me(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Me")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Me").Logger()

	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	c = logger.WithContext(c)
	user, err := ctrl.service.Me(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding current user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.WithLevel(inHttp.LevelFromError(err)).Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found current user")

	inHttp.WriteSuccess(c, w, http.StatusOK, "user found", map[string]interface{}{
		"user": user,
	})
}
