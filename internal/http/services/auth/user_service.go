package auth

import (
	"context"
	"time"

	"github.com/opsdeck/garrison/internal/discord"
	"github.com/opsdeck/garrison/internal/domain/repository"
	dto "github.com/opsdeck/garrison/internal/http/dto/auth"
	"github.com/opsdeck/garrison/internal/metrics"
	"github.com/opsdeck/garrison/internal/observability/logger"
	"github.com/opsdeck/garrison/internal/roles"
	"github.com/opsdeck/garrison/internal/security/password"
)

// UserDeps contiene las dependencias del user service.
type UserDeps struct {
	Users   repository.UserRepository
	Discord *discord.Client
	Roles   roles.Config
}

type userService struct {
	deps UserDeps
}

// NewUserService crea el servicio de usuario actual.
func NewUserService(deps UserDeps) UserService {
	return &userService{deps: deps}
}

// Current arma la respuesta de /api/user.
//
// Cuentas vinculadas: roles frescos del provider + clasificación por request,
// nunca cacheada, para que un cambio de rol en Discord tome efecto en el
// próximo request sin reemitir el session token. Cuentas password-only no
// tocan el provider. Un fallo upstream se propaga como tal: "sin roles" y
// "no se pudo determinar roles" son resultados distintos.
func (s *userService) Current(ctx context.Context, userID string) (*dto.CurrentUserResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.user"),
		logger.Op("Current"),
	)

	user, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &dto.CurrentUserResponse{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
		IsAdmin:  user.IsAdmin,
		Roles:    map[string][]string{},
	}

	if user.DiscordToken == "" {
		return out, nil
	}

	start := time.Now()
	byGuild, err := s.deps.Discord.FetchGuildRoles(ctx, user.DiscordToken)
	metrics.UpstreamLatency.WithLabelValues("roles").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		observeUpstreamFailure(err)
		log.Warn("role fetch failed", logger.Err(err))
		return nil, err
	}

	cls := roles.Classify(roles.Flatten(byGuild), s.deps.Roles)

	out.Roles = byGuild
	// Cualquiera de las dos fuentes otorga admin; la clasificación no pisa
	// el flag persistido.
	out.IsAdmin = user.IsAdmin || cls.IsAdmin
	out.IsVerified = cls.IsVerified
	if cls.Tier != roles.TierNone {
		t := string(cls.Tier)
		out.VerificationType = &t
	}
	return out, nil
}

// SetPassword normaliza y persiste una credencial local.
func (s *userService) SetPassword(ctx context.Context, userID string, pw *string) error {
	norm, err := password.Normalize(pw)
	if err != nil {
		return err
	}
	hash, err := password.Hash(norm)
	if err != nil {
		return err
	}
	return s.deps.Users.SetPasswordHash(ctx, userID, hash)
}
