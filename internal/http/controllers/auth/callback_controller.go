package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/opsdeck/garrison/internal/discord"
	httperrors "github.com/opsdeck/garrison/internal/http/errors"
	"github.com/opsdeck/garrison/internal/http/helpers"
	svc "github.com/opsdeck/garrison/internal/http/services/auth"
	"github.com/opsdeck/garrison/internal/observability/logger"
)

// CallbackController maneja GET|POST /oauth/callback.
type CallbackController struct {
	service svc.CallbackService
}

func NewCallbackController(service svc.CallbackService) *CallbackController {
	return &CallbackController{service: service}
}

// Callback completa el flujo OAuth. Acepta code/state por query (GET) o por
// form (POST). Un exchange fallido no se reintenta: el caller debe reiniciar
// el login.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Callback"))

	// Error del IDP primero.
	if idpErr := strings.TrimSpace(r.URL.Query().Get("error")); idpErr != "" {
		log.Warn("idp error", logger.String("error", idpErr))
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("idp_error: "+idpErr))
		return
	}

	code, state := extractCodeState(r)

	res, err := c.service.Callback(ctx, code, state)
	if err != nil {
		log.Warn("callback failed", logger.Err(err))
		httperrors.WriteError(w, mapAuthError(ctx, err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, res)
}

func extractCodeState(r *http.Request) (code, state string) {
	q := r.URL.Query()
	code = strings.TrimSpace(q.Get("code"))
	state = strings.TrimSpace(q.Get("state"))
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		if v := strings.TrimSpace(r.PostForm.Get("code")); v != "" {
			code = v
		}
		if v := strings.TrimSpace(r.PostForm.Get("state")); v != "" {
			state = v
		}
	}
	return code, state
}

// mapAuthError traduce errores de services/provider a AppErrors.
//
// Timeout y error upstream son clases distintas a propósito: el caller debe
// poder diferenciar "no hay roles" de "no se pudo determinar roles".
func mapAuthError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, svc.ErrMissingCode):
		return httperrors.ErrBadRequest.WithDetail("code required")
	case errors.Is(err, svc.ErrInvalidState):
		return httperrors.ErrBadRequest.WithDetail("invalid or expired state")
	case errors.Is(err, discord.ErrUpstreamTimeout):
		return httperrors.ErrUpstreamTimeout.WithCause(err)
	case errors.Is(err, context.Canceled):
		// Cliente desconectado: la respuesta no llegará de todos modos.
		return httperrors.ErrInternal.WithCause(err)
	}
	if ue, ok := discord.IsUpstreamError(err); ok {
		app := httperrors.ErrUpstreamError.
			WithDetail("provider status " + http.StatusText(ue.Status)).
			WithCause(err)
		// 429 del provider se reenvía tal cual para que la capa de arriba
		// pueda aplicar backoff; el resto queda en 502.
		if ue.Status == http.StatusTooManyRequests {
			app = app.WithStatus(http.StatusTooManyRequests)
		}
		return app
	}
	return err
}
