// Package auth contiene los services de autenticación: composición de
// redirect validator, provider client, token service, role resolver y store.
package auth

import (
	"context"

	dto "github.com/opsdeck/garrison/internal/http/dto/auth"
)

// LoginService inicia el flujo de login contra el provider.
type LoginService interface {
	// Start valida redirectTo, registra el state y devuelve la URL de
	// autorización del provider.
	Start(ctx context.Context, redirectTo string) (*dto.LoginStartResult, error)
}

// CallbackService completa el flujo OAuth.
type CallbackService interface {
	// Callback valida el state, intercambia el code, vincula/crea el usuario
	// y persiste el token del provider.
	Callback(ctx context.Context, code, state string) (*dto.CallbackResult, error)
}

// UserService resuelve el usuario actual para endpoints protegidos.
type UserService interface {
	// Current arma la respuesta de /api/user; para cuentas vinculadas trae
	// roles del provider y clasifica en cada request.
	Current(ctx context.Context, userID string) (*dto.CurrentUserResponse, error)

	// SetPassword normaliza y persiste una credencial local.
	SetPassword(ctx context.Context, userID string, password *string) error
}

// Services agrupa los services del dominio auth.
type Services struct {
	Login    LoginService
	Callback CallbackService
	User     UserService
}
