// Package server arma el handler HTTP completo a partir de la configuración.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opsdeck/garrison/internal/cache"
	cachememory "github.com/opsdeck/garrison/internal/cache/memory"
	cacheredis "github.com/opsdeck/garrison/internal/cache/redis"
	"github.com/opsdeck/garrison/internal/config"
	"github.com/opsdeck/garrison/internal/discord"
	"github.com/opsdeck/garrison/internal/domain/repository"
	"github.com/opsdeck/garrison/internal/email"
	authctrl "github.com/opsdeck/garrison/internal/http/controllers/auth"
	mw "github.com/opsdeck/garrison/internal/http/middlewares"
	"github.com/opsdeck/garrison/internal/http/router"
	authsvc "github.com/opsdeck/garrison/internal/http/services/auth"
	jwtx "github.com/opsdeck/garrison/internal/jwt"
	"github.com/opsdeck/garrison/internal/metrics"
	"github.com/opsdeck/garrison/internal/roles"
	storememory "github.com/opsdeck/garrison/internal/store/memory"
	storepg "github.com/opsdeck/garrison/internal/store/pg"
)

// Cleanup libera recursos creados por Build.
type Cleanup func() error

// Build arma el handler con todas sus dependencias.
func Build(ctx context.Context, cfg *config.Config) (http.Handler, Cleanup, error) {
	var cleanups []func() error
	cleanup := func() error {
		var first error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	// Métricas
	if err := metrics.Register(nil); err != nil {
		return nil, cleanup, err
	}

	// Store
	users, err := buildStore(ctx, cfg, &cleanups)
	if err != nil {
		return nil, cleanup, err
	}

	// Cache de state OAuth
	states, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	cleanups = append(cleanups, states.Close)

	// Token service
	secret := cfg.Auth.SigningSecret
	if secret == "" {
		// Solo alcanzable en dev: Validate corta antes en cualquier otro env.
		secret = config.PlaceholderSecret
	}
	ttl, _ := cfg.TokenTTL()
	issuer, err := jwtx.NewIssuer("garrison", secret, ttl)
	if err != nil {
		return nil, cleanup, err
	}

	// Provider client
	timeout, _ := cfg.DiscordTimeout()
	dc := discord.New(discord.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURI:  cfg.Discord.RedirectURI,
		APIBase:      cfg.Discord.APIBase,
		Timeout:      timeout,
	})

	// Notifier
	var notifier email.Notifier = email.NoOp{}
	if cfg.SMTPEnabled() {
		notifier = email.NewSMTPNotifier(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From,
			cfg.SMTP.Username, cfg.SMTP.Password)
	}

	stateTTL, _ := cfg.LoginStateTTL()
	rolesCfg := roles.Config{
		Owner:          cfg.Discord.Roles.Owner,
		Administrator:  cfg.Discord.Roles.Administrator,
		Moderator:      cfg.Discord.Roles.Moderator,
		Government:     cfg.Discord.Roles.Government,
		Military:       cfg.Discord.Roles.Military,
		Education:      cfg.Discord.Roles.Education,
		VerifiedMember: cfg.Discord.Roles.VerifiedMember,
		VerifiedUser:   cfg.Discord.Roles.VerifiedUser,
	}

	services := authsvc.Services{
		Login: authsvc.NewLoginService(authsvc.LoginDeps{
			Discord:         dc,
			States:          states,
			StateTTL:        stateTTL,
			AllowedHosts:    cfg.AllowedRedirectHostSet(),
			DefaultRedirect: cfg.Auth.DefaultRedirect,
		}),
		Callback: authsvc.NewCallbackService(authsvc.CallbackDeps{
			Users:    users,
			Discord:  dc,
			Issuer:   issuer,
			States:   states,
			Notifier: notifier,
		}),
		User: authsvc.NewUserService(authsvc.UserDeps{
			Users:   users,
			Discord: dc,
			Roles:   rolesCfg,
		}),
	}

	h := router.New(router.Deps{
		AuthControllers:    authctrl.NewControllers(services),
		AuthMiddleware:     mw.WithAuth(issuer),
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	return h, cleanup, nil
}

func buildStore(ctx context.Context, cfg *config.Config, cleanups *[]func() error) (repository.UserRepository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storememory.New(), nil
	case "postgres", "":
		st, err := storepg.New(ctx, cfg.Storage.DSN, storepg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		*cleanups = append(*cleanups, func() error { st.Close(); return nil })
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildCache(ctx context.Context, cfg *config.Config) (cache.Client, error) {
	switch cfg.Cache.Kind {
	case "redis":
		return cacheredis.New(ctx, cacheredis.Config{
			Addr:   cfg.Cache.Redis.Addr,
			DB:     cfg.Cache.Redis.DB,
			Prefix: cfg.Cache.Redis.Prefix,
		})
	case "memory", "":
		ttl := 10 * time.Minute
		if d, err := time.ParseDuration(cfg.Cache.Memory.DefaultTTL); err == nil && d > 0 {
			ttl = d
		}
		return cachememory.New(ttl, ""), nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
}
