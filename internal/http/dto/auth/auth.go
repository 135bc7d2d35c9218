// Package auth contiene los DTOs del dominio auth.
package auth

import "time"

// LoginStartResult es el resultado de iniciar el flujo de login.
type LoginStartResult struct {
	AuthorizeURL string
}

// CallbackResult confirma la vinculación de la cuenta del provider.
type CallbackResult struct {
	Linked     bool      `json:"linked"`
	Username   string    `json:"username"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	RedirectTo string    `json:"redirect_to"`
}

// CurrentUserResponse es la respuesta de GET /api/user.
//
// VerificationType va como null cuando no hay tier; Roles es el mapa
// guild→role IDs tal cual lo reportó el provider en este request.
type CurrentUserResponse struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	Avatar           string              `json:"avatar"`
	IsAdmin          bool                `json:"is_admin"`
	IsVerified       bool                `json:"is_verified"`
	VerificationType *string             `json:"verification_type"`
	Roles            map[string][]string `json:"roles"`
}

// SetPasswordRequest es el body de POST /api/user/password.
// Password es puntero: distinguir "ausente" de "vacío" es parte del contrato.
type SetPasswordRequest struct {
	Password *string `json:"password"`
}
