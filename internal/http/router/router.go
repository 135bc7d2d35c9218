// Package router arma el router HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/opsdeck/garrison/internal/http/controllers/auth"
	httperrors "github.com/opsdeck/garrison/internal/http/errors"
	mw "github.com/opsdeck/garrison/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	AuthControllers *authctrl.Controllers

	// AuthMiddleware valida el bearer token en rutas protegidas.
	AuthMiddleware mw.Middleware

	CORSAllowedOrigins []string
}

// New arma el router con middlewares base y todas las rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithRecover())
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithCORS(deps.CORSAllowedOrigins))

	// Público
	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	RegisterAuthRoutes(r, deps)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
