package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jwtx "github.com/opsdeck/garrison/internal/jwt"
)

func authHandler(t *testing.T, verifier TokenVerifier) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := GetUserID(r.Context())
		require.NotEmpty(t, uid)
		w.Header().Set("X-User", uid)
		w.WriteHeader(http.StatusOK)
	})
	return WithAuth(verifier)(next)
}

func TestWithAuth_ValidToken(t *testing.T) {
	issuer, err := jwtx.NewIssuer("garrison", "secret", time.Hour)
	require.NoError(t, err)
	tok, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	h := authHandler(t, issuer)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", rec.Header().Get("X-User"))
}

// El 401 no distingue causas: ausente, malformado, firmado con otro secreto y
// expirado devuelven exactamente el mismo status y el mismo body.
func TestWithAuth_Uniform401(t *testing.T) {
	issuer, err := jwtx.NewIssuer("garrison", "secret", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := jwtx.NewIssuer("garrison", "other-secret", time.Hour)
	require.NoError(t, err)
	wrongKey, _, err := otherIssuer.Issue("user-1")
	require.NoError(t, err)

	expiredIssuer, err := jwtx.NewIssuer("garrison", "secret", time.Millisecond)
	require.NoError(t, err)
	expired, _, err := expiredIssuer.Issue("user-1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	h := authHandler(t, issuer)

	cases := map[string]string{
		"missing":     "",
		"not-bearer":  "Basic dXNlcjpwYXNz",
		"malformed":   "Bearer no-es-un-jwt",
		"wrong-key":   "Bearer " + wrongKey,
		"expired":     "Bearer " + expired,
		"empty-token": "Bearer ",
	}

	var firstBody string
	for name, header := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
		require.Empty(t, rec.Header().Get("X-User"), name)
		if firstBody == "" {
			firstBody = rec.Body.String()
			continue
		}
		require.Equal(t, firstBody, rec.Body.String(), "body de %s difiere: filtra la causa", name)
	}
}
