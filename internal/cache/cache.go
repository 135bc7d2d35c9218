// Package cache provee un store TTL'd con backend memory o redis.
//
// El core lo usa para el state del flujo OAuth (valor opaco de un solo uso
// que cruza el round-trip login → callback). No se cachean clasificaciones
// de roles: esas se recomputan por request a propósito.
package cache

import (
	"context"
	"time"
)

// Client define las operaciones de cache que el core necesita.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key. Idempotente.
	Delete(ctx context.Context, key string) error

	// Close cierra la conexión.
	Close() error
}

// ErrNotFound indica que la key no existe o expiró.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "cache: key not found" }

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}
