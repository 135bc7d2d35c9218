package router

import (
	"github.com/go-chi/chi/v5"
)

// RegisterAuthRoutes registra login, callback y endpoints protegidos.
func RegisterAuthRoutes(r chi.Router, deps Deps) {
	c := deps.AuthControllers
	if c == nil {
		return
	}

	r.Get("/login", c.Login.Login)
	r.Get("/oauth/callback", c.Callback.Callback)
	r.Post("/oauth/callback", c.Callback.Callback)

	r.Group(func(pr chi.Router) {
		pr.Use(deps.AuthMiddleware)
		pr.Get("/api/user", c.User.Current)
		pr.Post("/api/user/password", c.User.SetPassword)
	})
}
