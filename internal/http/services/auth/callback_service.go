package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/garrison/internal/cache"
	"github.com/opsdeck/garrison/internal/discord"
	"github.com/opsdeck/garrison/internal/domain/repository"
	"github.com/opsdeck/garrison/internal/email"
	dto "github.com/opsdeck/garrison/internal/http/dto/auth"
	jwtx "github.com/opsdeck/garrison/internal/jwt"
	"github.com/opsdeck/garrison/internal/metrics"
	"github.com/opsdeck/garrison/internal/observability/logger"
)

// Errores de callback.
var (
	ErrMissingCode  = fmt.Errorf("missing code")
	ErrInvalidState = fmt.Errorf("invalid or expired state")
)

// CallbackDeps contiene las dependencias del callback service.
type CallbackDeps struct {
	Users    repository.UserRepository
	Discord  *discord.Client
	Issuer   *jwtx.Issuer
	States   cache.Client
	Notifier email.Notifier
}

type callbackService struct {
	deps CallbackDeps
}

// NewCallbackService crea el servicio de callback OAuth.
func NewCallbackService(deps CallbackDeps) CallbackService {
	if deps.Notifier == nil {
		deps.Notifier = email.NoOp{}
	}
	return &callbackService{deps: deps}
}

func (s *callbackService) Callback(ctx context.Context, code, state string) (*dto.CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Op("Callback"),
	)

	if code == "" {
		return nil, ErrMissingCode
	}

	// Paso 1: state de un solo uso. Se borra antes del exchange: un exchange
	// fallido obliga a reiniciar el login, no hay estado "pending".
	redirectTo, err := s.deps.States.Get(ctx, statePrefix+state)
	if state == "" || err != nil {
		if err != nil && !cache.IsNotFound(err) {
			return nil, err
		}
		log.Debug("state rejected")
		return nil, ErrInvalidState
	}
	_ = s.deps.States.Delete(ctx, statePrefix+state)

	// Paso 2: code → provider token.
	start := time.Now()
	provTok, err := s.deps.Discord.ExchangeCode(ctx, code)
	metrics.UpstreamLatency.WithLabelValues("token").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.OAuthCallbacks.WithLabelValues("failed").Inc()
		observeUpstreamFailure(err)
		return nil, err
	}

	// Paso 3: perfil del provider.
	profile, err := s.deps.Discord.FetchProfile(ctx, provTok)
	if err != nil {
		metrics.OAuthCallbacks.WithLabelValues("failed").Inc()
		observeUpstreamFailure(err)
		return nil, err
	}
	log = log.With(logger.Username(profile.Username))

	// Paso 4: vincular o crear el usuario local.
	user, created, err := s.linkUser(ctx, profile)
	if err != nil {
		metrics.OAuthCallbacks.WithLabelValues("failed").Inc()
		return nil, err
	}

	// Paso 5: persistir el token del provider.
	if err := s.deps.Users.SetDiscordToken(ctx, user.ID, provTok); err != nil {
		metrics.OAuthCallbacks.WithLabelValues("failed").Inc()
		return nil, err
	}

	// Paso 6: session token propio.
	sessTok, exp, err := s.deps.Issuer.Issue(user.ID)
	if err != nil {
		metrics.OAuthCallbacks.WithLabelValues("failed").Inc()
		return nil, err
	}

	if created {
		log.Info("user created from provider profile", logger.UserID(user.ID))
	}
	log.Info("discord account linked", logger.UserID(user.ID))
	metrics.OAuthCallbacks.WithLabelValues("linked").Inc()

	// Best effort, fuera del request path.
	go s.deps.Notifier.AccountLinked(user.Email, user.Username)

	return &dto.CallbackResult{
		Linked:     true,
		Username:   user.Username,
		Token:      sessTok,
		ExpiresAt:  exp,
		RedirectTo: redirectTo,
	}, nil
}

// linkUser busca por discord ID y crea la cuenta si no existe. El username
// del provider puede chocar con uno local: en ese caso se sufija con el ID
// del provider, que es estable.
func (s *callbackService) linkUser(ctx context.Context, p *discord.Profile) (*repository.User, bool, error) {
	user, err := s.deps.Users.GetByDiscordID(ctx, p.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	in := repository.CreateUserInput{
		Username:  p.Username,
		Avatar:    p.Avatar,
		DiscordID: p.ID,
	}
	user, err = s.deps.Users.Create(ctx, in)
	if errors.Is(err, repository.ErrConflict) {
		in.Username = p.Username + "-" + p.ID
		user, err = s.deps.Users.Create(ctx, in)
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func observeUpstreamFailure(err error) {
	switch {
	case errors.Is(err, discord.ErrUpstreamTimeout):
		metrics.UpstreamFailures.WithLabelValues("timeout").Inc()
	default:
		if _, ok := discord.IsUpstreamError(err); ok {
			metrics.UpstreamFailures.WithLabelValues("error").Inc()
		}
	}
}
