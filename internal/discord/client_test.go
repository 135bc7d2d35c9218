package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ts *httptest.Server, timeout time.Duration) *Client {
	return New(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://localhost/oauth/callback",
		APIBase:      ts.URL,
		Timeout:      timeout,
	})
}

func TestExchangeCode_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "prov-token-1",
			"token_type":   "Bearer",
			"expires_in":   604800,
		})
	}))
	defer ts.Close()

	tok, err := newTestClient(ts, time.Second).ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "prov-token-1", tok)
}

func TestExchangeCode_Non2xxIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := newTestClient(ts, time.Second).ExchangeCode(context.Background(), "bad")
	require.Error(t, err)
	ue, ok := IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ue.Status)
}

func TestExchangeCode_TimeoutIsDistinct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	_, err := newTestClient(ts, 20*time.Millisecond).ExchangeCode(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestExchangeCode_CancelledContextPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newTestClient(ts, time.Second).ExchangeCode(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/@me", r.URL.Path)
		require.Equal(t, "Bearer prov-token-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "111", "username": "sgt-pepper", "avatar": "abcd",
		})
	}))
	defer ts.Close()

	p, err := newTestClient(ts, time.Second).FetchProfile(context.Background(), "prov-token-1")
	require.NoError(t, err)
	assert.Equal(t, "111", p.ID)
	assert.Equal(t, "sgt-pepper", p.Username)
	assert.Equal(t, "abcd", p.Avatar)
}

func TestFetchGuildRoles_AggregatesArbitraryGuildCount(t *testing.T) {
	rolesByGuild := map[string][]string{
		"g1": {"r1", "r2"},
		"g2": {"r3"},
		"g3": {},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/@me/guilds":
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"id": "g1", "name": "alpha"},
				{"id": "g2", "name": "bravo"},
				{"id": "g3", "name": "charlie"},
			})
		case strings.HasPrefix(r.URL.Path, "/users/@me/guilds/") && strings.HasSuffix(r.URL.Path, "/member"):
			gid := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/@me/guilds/"), "/member")
			roles, ok := rolesByGuild[gid]
			require.True(t, ok, "unexpected guild %q", gid)
			_ = json.NewEncoder(w).Encode(map[string]any{"roles": roles})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	got, err := newTestClient(ts, time.Second).FetchGuildRoles(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"r1", "r2"}, got["g1"])
	assert.ElementsMatch(t, []string{"r3"}, got["g2"])
	assert.Empty(t, got["g3"])
}

func TestFetchGuildRoles_MemberErrorIsNotSwallowed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/@me/guilds" {
			_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "g1"}, {"id": "g2"}})
			return
		}
		if strings.Contains(r.URL.Path, "/g2/") {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"roles": []string{"r1"}})
	}))
	defer ts.Close()

	_, err := newTestClient(ts, time.Second).FetchGuildRoles(context.Background(), "tok")
	require.Error(t, err)
	ue, ok := IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
}

func TestAuthorizeURL(t *testing.T) {
	c := New(Config{ClientID: "cid", RedirectURI: "https://localhost/cb"})
	u := c.AuthorizeURL("st4te")
	assert.Contains(t, u, DefaultAPIBase+"/oauth2/authorize?")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "state=st4te")
	assert.Contains(t, u, "response_type=code")
}
