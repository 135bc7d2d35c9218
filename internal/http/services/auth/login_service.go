package auth

import (
	"context"
	"time"

	"github.com/opsdeck/garrison/internal/cache"
	"github.com/opsdeck/garrison/internal/discord"
	dto "github.com/opsdeck/garrison/internal/http/dto/auth"
	"github.com/opsdeck/garrison/internal/metrics"
	"github.com/opsdeck/garrison/internal/observability/logger"
	"github.com/opsdeck/garrison/internal/security/redirect"
	tokens "github.com/opsdeck/garrison/internal/security/token"
)

const statePrefix = "oauth:state:"

// LoginDeps contiene las dependencias del login service.
type LoginDeps struct {
	Discord         *discord.Client
	States          cache.Client
	StateTTL        time.Duration
	AllowedHosts    map[string]struct{}
	DefaultRedirect string
}

type loginService struct {
	deps LoginDeps
}

// NewLoginService crea el servicio de inicio de login.
func NewLoginService(deps LoginDeps) LoginService {
	if deps.StateTTL <= 0 {
		deps.StateTTL = 10 * time.Minute
	}
	if deps.DefaultRedirect == "" {
		deps.DefaultRedirect = "/"
	}
	return &loginService{deps: deps}
}

func (s *loginService) Start(ctx context.Context, redirectTo string) (*dto.LoginStartResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Start"),
	)

	// El redirect_to del caller jamás se usa sin clasificar; inseguro cae al
	// default fijo, nunca a un reemplazo derivado del input.
	target := redirect.SafeOrDefault(redirectTo, s.deps.DefaultRedirect, s.deps.AllowedHosts)
	if target != redirectTo && redirectTo != "" {
		log.Debug("redirect_to rejected, using default")
	}

	state, err := tokens.GenerateOpaqueToken(24)
	if err != nil {
		return nil, err
	}
	if err := s.deps.States.Set(ctx, statePrefix+state, target, s.deps.StateTTL); err != nil {
		return nil, err
	}

	metrics.LoginsStarted.Inc()
	return &dto.LoginStartResult{AuthorizeURL: s.deps.Discord.AuthorizeURL(state)}, nil
}
