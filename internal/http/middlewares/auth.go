package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/opsdeck/garrison/internal/http/errors"
	jwtx "github.com/opsdeck/garrison/internal/jwt"
	"github.com/opsdeck/garrison/internal/metrics"
	"github.com/opsdeck/garrison/internal/observability/logger"
)

// TokenVerifier verifica un session token y devuelve el user ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// WithAuth exige un bearer token válido e inyecta el user ID en el contexto.
//
// El rechazo es terminal y uniforme: ausente, malformado o expirado producen
// el mismo 401 para no filtrar la causa al cliente. La causa real se loguea y
// se cuenta en métricas.
func WithAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.From(r.Context()).With(logger.Op("auth"))

			token := bearerToken(r)
			if token == "" {
				metrics.TokenVerifications.WithLabelValues("invalid").Inc()
				log.Debug("missing bearer token")
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				outcome := "invalid"
				if errors.Is(err, jwtx.ErrTokenExpired) {
					outcome = "expired"
				}
				metrics.TokenVerifications.WithLabelValues(outcome).Inc()
				log.Debug("token rejected", logger.String("outcome", outcome))
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			metrics.TokenVerifications.WithLabelValues("ok").Inc()
			ctx := WithUserID(r.Context(), userID)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(userID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
