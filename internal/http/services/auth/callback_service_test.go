package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachememory "github.com/opsdeck/garrison/internal/cache/memory"
	"github.com/opsdeck/garrison/internal/discord"
	"github.com/opsdeck/garrison/internal/domain/repository"
	jwtx "github.com/opsdeck/garrison/internal/jwt"
	storememory "github.com/opsdeck/garrison/internal/store/memory"
)

// fakeProvider emula los endpoints del provider que usa el callback.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "prov-token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer prov-token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":       "111222333",
			"username": "recluta",
			"avatar":   "a1b2c3",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type callbackFixture struct {
	svc    CallbackService
	users  *storememory.Store
	issuer *jwtx.Issuer
	impl   *callbackService
}

func newCallbackFixture(t *testing.T, apiBase string) callbackFixture {
	t.Helper()
	issuer, err := jwtx.NewIssuer("garrison", "test-secret", time.Hour)
	require.NoError(t, err)

	users := storememory.New()
	svc := NewCallbackService(CallbackDeps{
		Users: users,
		Discord: discord.New(discord.Config{
			ClientID:     "cid",
			ClientSecret: "csec",
			RedirectURI:  "http://localhost/oauth/callback",
			APIBase:      apiBase,
			Timeout:      2 * time.Second,
		}),
		Issuer: issuer,
		States: cachememory.New(time.Minute, ""),
	})
	return callbackFixture{svc: svc, users: users, issuer: issuer, impl: svc.(*callbackService)}
}

func (f callbackFixture) seedState(t *testing.T, state, target string) {
	t.Helper()
	require.NoError(t, f.impl.deps.States.Set(context.Background(), statePrefix+state, target, time.Minute))
}

func TestCallback_LinksNewAccount(t *testing.T) {
	srv := fakeProvider(t)
	f := newCallbackFixture(t, srv.URL)
	f.seedState(t, "st-1", "/dashboard")

	res, err := f.svc.Callback(context.Background(), "good-code", "st-1")
	require.NoError(t, err)
	require.True(t, res.Linked)
	require.Equal(t, "recluta", res.Username)
	require.Equal(t, "/dashboard", res.RedirectTo)
	require.True(t, res.ExpiresAt.After(time.Now()))

	// El session token emitido tiene que verificar contra el mismo issuer.
	userID, err := f.issuer.Verify(res.Token)
	require.NoError(t, err)

	// Y el token del provider quedó persistido en la cuenta vinculada.
	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "prov-token-abc", u.DiscordToken)
	require.Equal(t, "111222333", u.DiscordID)
}

func TestCallback_ExistingAccountRelinks(t *testing.T) {
	srv := fakeProvider(t)
	f := newCallbackFixture(t, srv.URL)

	existing, err := f.users.Create(context.Background(), repository.CreateUserInput{
		Username:  "recluta",
		DiscordID: "111222333",
	})
	require.NoError(t, err)

	f.seedState(t, "st-2", "/")
	res, err := f.svc.Callback(context.Background(), "good-code", "st-2")
	require.NoError(t, err)

	userID, err := f.issuer.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, existing.ID, userID, "no debe crear una cuenta nueva")
}

func TestCallback_UsernameConflictGetsSuffix(t *testing.T) {
	srv := fakeProvider(t)
	f := newCallbackFixture(t, srv.URL)

	// Cuenta local con el mismo username pero sin vínculo al provider.
	_, err := f.users.Create(context.Background(), repository.CreateUserInput{Username: "recluta"})
	require.NoError(t, err)

	f.seedState(t, "st-3", "/")
	res, err := f.svc.Callback(context.Background(), "good-code", "st-3")
	require.NoError(t, err)
	require.Equal(t, "recluta-111222333", res.Username)
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	srv := fakeProvider(t)
	f := newCallbackFixture(t, srv.URL)
	f.seedState(t, "st-4", "/")

	_, err := f.svc.Callback(context.Background(), "good-code", "st-4")
	require.NoError(t, err)

	_, err = f.svc.Callback(context.Background(), "good-code", "st-4")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCallback_MissingCode(t *testing.T) {
	f := newCallbackFixture(t, "http://127.0.0.1:0")
	f.seedState(t, "st-5", "/")

	_, err := f.svc.Callback(context.Background(), "", "st-5")
	require.ErrorIs(t, err, ErrMissingCode)
}

func TestCallback_UnknownState(t *testing.T) {
	f := newCallbackFixture(t, "http://127.0.0.1:0")

	_, err := f.svc.Callback(context.Background(), "good-code", "never-issued")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.Callback(context.Background(), "good-code", "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCallback_UpstreamErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := newCallbackFixture(t, srv.URL)
	f.seedState(t, "st-6", "/")

	_, err := f.svc.Callback(context.Background(), "good-code", "st-6")
	ue, ok := discord.IsUpstreamError(err)
	require.True(t, ok, "esperaba UpstreamError, got %v", err)
	require.Equal(t, http.StatusBadGateway, ue.Status)
}
