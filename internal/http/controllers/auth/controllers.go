// Package auth contiene los controllers de autenticación.
package auth

import svc "github.com/opsdeck/garrison/internal/http/services/auth"

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login    *LoginController
	Callback *CallbackController
	User     *UserController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Login:    NewLoginController(s.Login),
		Callback: NewCallbackController(s.Callback),
		User:     NewUserController(s.User),
	}
}
