// Package discord es el cliente del identity provider: intercambio de
// authorization code, perfil del usuario y roles por guild.
//
// Todas las llamadas comparten un http.Client con timeout acotado y reciben
// context del request entrante: si el caller se desconecta, las llamadas en
// vuelo se abandonan sin retry.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultAPIBase = "https://discord.com/api/v10"

// maxGuildFetches acota el fan-out de member lookups concurrentes.
const maxGuildFetches = 4

// Config contiene credenciales del OAuth client y tuning de red.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBase      string        // vacío = DefaultAPIBase
	Timeout      time.Duration // 0 = 10s
}

// Client habla con la API de Discord.
type Client struct {
	cfg  Config
	base string
	http *http.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// Profile es el perfil mínimo que el core necesita del provider.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type guildMember struct {
	Roles []string `json:"roles"`
}

// AuthorizeURL construye la URL de autorización para iniciar el login.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify guilds guilds.members.read")
	q.Set("state", state)
	return c.base + "/oauth2/authorize?" + q.Encode()
}

// ExchangeCode POSTea el authorization code al token endpoint y devuelve el
// access token del provider.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", &UpstreamError{Endpoint: "/oauth2/token", Status: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("discord token decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("discord token response without access_token")
	}
	return tr.AccessToken, nil
}

// FetchProfile trae id/username/avatar del dueño del access token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, "/users/@me", accessToken, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchGuildRoles enumera los guilds del token y hace un member lookup por
// guild, acumulando role IDs. La cantidad de guilds es arbitraria; el fan-out
// corre con concurrencia acotada y respeta cancelación del context.
func (c *Client) FetchGuildRoles(ctx context.Context, accessToken string) (map[string][]string, error) {
	var guilds []guild
	if err := c.getJSON(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(guilds))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxGuildFetches)
	for _, gd := range guilds {
		gd := gd
		g.Go(func() error {
			var m guildMember
			path := "/users/@me/guilds/" + gd.ID + "/member"
			if err := c.getJSON(gctx, path, accessToken, &m); err != nil {
				return err
			}
			mu.Lock()
			out[gd.ID] = m.Roles
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path, accessToken string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &UpstreamError{Endpoint: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("discord %s decode: %w", path, err)
	}
	return nil
}
