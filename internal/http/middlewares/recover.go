package middlewares

import (
	"net/http"

	"github.com/opsdeck/garrison/internal/http/errors"
	"github.com/opsdeck/garrison/internal/observability/logger"
)

// WithRecover captura panics y devuelve un 500 en lugar de crashear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log := logger.From(r.Context())
					log.Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					appErr := errors.ErrInternal
					// El request ID va en el body para que el cliente pueda
					// reportarlo; el log de arriba ya lo lleva como campo.
					if rid := GetRequestID(r.Context()); rid != "" {
						appErr = appErr.WithDetail("request_id: " + rid)
					}
					errors.WriteError(w, appErr)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
