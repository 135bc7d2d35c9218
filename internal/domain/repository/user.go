package repository

import (
	"context"
	"time"
)

// User representa una cuenta del sistema.
//
// PasswordHash queda vacío para cuentas que solo entran por Discord.
// DiscordToken es el access token del provider, persistido al completar el
// OAuth callback. IsAdmin es el flag administrativo persistido; es
// independiente de la clasificación derivada de roles de Discord y cualquiera
// de los dos alcanza para otorgar admin.
type User struct {
	ID           string
	Username     string
	Email        string
	Avatar       string
	PasswordHash string
	DiscordID    string
	DiscordToken string
	IsAdmin      bool
	CreatedAt    time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Username     string
	Email        string
	Avatar       string
	PasswordHash string
	DiscordID    string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByID busca un usuario por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername busca por username. Retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByDiscordID busca por el ID del provider. Retorna ErrNotFound si no existe.
	GetByDiscordID(ctx context.Context, discordID string) (*User, error)

	// Create crea un usuario. Retorna ErrConflict si el username ya existe.
	// DiscordID vacío es válido (cuenta password-only): el backend pg lo
	// guarda como NULL y el de memoria como ""; en ambos casos GetByDiscordID
	// con string vacío retorna ErrNotFound, nunca una de esas cuentas.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// SetDiscordToken persiste el access token del provider tras un exchange exitoso.
	SetDiscordToken(ctx context.Context, userID, token string) error

	// SetPasswordHash persiste un hash de credencial ya normalizada.
	SetPasswordHash(ctx context.Context, userID, hash string) error
}
