package auth

import (
	"net/http"
	"strings"

	httperrors "github.com/opsdeck/garrison/internal/http/errors"
	svc "github.com/opsdeck/garrison/internal/http/services/auth"
	"github.com/opsdeck/garrison/internal/observability/logger"
)

// LoginController maneja GET /login.
type LoginController struct {
	service svc.LoginService
}

func NewLoginController(service svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

// Login inicia el flujo OAuth: 302 a la URL de autorización del provider.
// redirect_to es opcional y pasa por el redirect validator; un valor inseguro
// cae al default configurado, nunca se refleja.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Login"))

	redirectTo := strings.TrimSpace(r.URL.Query().Get("redirect_to"))

	res, err := c.service.Start(ctx, redirectTo)
	if err != nil {
		log.Error("login start failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	http.Redirect(w, r, res.AuthorizeURL, http.StatusFound)
}
