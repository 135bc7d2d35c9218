package auth

import (
	"errors"
	"net/http"

	"github.com/opsdeck/garrison/internal/domain/repository"
	dto "github.com/opsdeck/garrison/internal/http/dto/auth"
	httperrors "github.com/opsdeck/garrison/internal/http/errors"
	"github.com/opsdeck/garrison/internal/http/helpers"
	"github.com/opsdeck/garrison/internal/http/middlewares"
	svc "github.com/opsdeck/garrison/internal/http/services/auth"
	"github.com/opsdeck/garrison/internal/observability/logger"
	"github.com/opsdeck/garrison/internal/security/password"
)

// UserController maneja los endpoints protegidos de usuario.
type UserController struct {
	service svc.UserService
}

func NewUserController(service svc.UserService) *UserController {
	return &UserController{service: service}
}

// Current maneja GET /api/user. Requiere WithAuth en la ruta.
func (c *UserController) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Current"))

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		// Solo alcanzable si la ruta se montó sin WithAuth.
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	res, err := c.service.Current(ctx, userID)
	if err != nil {
		log.Warn("current user failed", logger.Err(err))
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, mapAuthError(ctx, err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, res)
}

// SetPassword maneja POST /api/user/password.
func (c *UserController) SetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SetPassword"))

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.SetPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.SetPassword(ctx, userID, req.Password); err != nil {
		log.Warn("set password failed", logger.Err(err))
		switch {
		case errors.Is(err, password.ErrMissingCredential):
			httperrors.WriteError(w, httperrors.ErrMissingCredential)
		case errors.Is(err, repository.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		default:
			httperrors.WriteError(w, err)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
