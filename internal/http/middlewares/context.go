package middlewares

import "context"

type ctxKey string

const (
	// ctxUserIDKey guarda el user ID extraído de un token verificado.
	ctxUserIDKey ctxKey = "user_id"
	// ctxRequestIDKey guarda el request ID.
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUserID inyecta el user ID en el contexto.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

// GetUserID obtiene el user ID del contexto. Vacío si el middleware de auth
// no corrió (ruta pública).
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
