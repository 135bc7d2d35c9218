// Package roles clasifica sets de role IDs del provider en flags de permiso
// internos. Función pura, sin I/O: se recomputa en cada decisión de
// autorización para que un cambio de rol en el provider tome efecto en el
// request siguiente sin reemitir tokens.
package roles

// Tier es el nivel de verificación derivado de roles.
type Tier string

const (
	TierGovernment Tier = "government"
	TierMilitary   Tier = "military"
	TierEducation  Tier = "education"
	TierMember     Tier = "member"
	TierNone       Tier = ""
)

// IsValid retorna true si el tier es conocido.
func (t Tier) IsValid() bool {
	switch t {
	case TierGovernment, TierMilitary, TierEducation, TierMember, TierNone:
		return true
	}
	return false
}

// Config son los role IDs "well-known" (opacos, configurados; nunca se
// matchea por nombre).
type Config struct {
	Owner         string
	Administrator string
	Moderator     string

	Government     string
	Military       string
	Education      string
	VerifiedMember string
	VerifiedUser   string
}

// Classification es el resultado derivado; nunca se persiste.
type Classification struct {
	IsAdmin    bool
	IsVerified bool
	Tier       Tier
}

// Classify mapea un set de role IDs a una Classification.
//
// Admin: intersección con {owner, administrator, moderator}. El tier se
// resuelve por prioridad explícita, de mayor a menor: government > military >
// education > member (member matchea verified-member O verified-user). El
// orden es visible acá, no un efecto del orden de iteración.
//
// La clasificación es independiente del flag admin persistido del User; el
// caller combina ambos (cualquiera de los dos otorga admin).
func Classify(roleIDs []string, cfg Config) Classification {
	has := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		if id != "" {
			has[id] = struct{}{}
		}
	}
	contains := func(id string) bool {
		if id == "" {
			return false
		}
		_, ok := has[id]
		return ok
	}

	out := Classification{
		IsAdmin: contains(cfg.Owner) || contains(cfg.Administrator) || contains(cfg.Moderator),
	}

	// Prioridad fija: el primer match gana.
	switch {
	case contains(cfg.Government):
		out.Tier = TierGovernment
	case contains(cfg.Military):
		out.Tier = TierMilitary
	case contains(cfg.Education):
		out.Tier = TierEducation
	case contains(cfg.VerifiedMember) || contains(cfg.VerifiedUser):
		out.Tier = TierMember
	default:
		out.Tier = TierNone
	}
	out.IsVerified = out.Tier != TierNone

	return out
}

// Flatten junta todos los role IDs de un mapa guild→roles en un solo slice.
func Flatten(byGuild map[string][]string) []string {
	var out []string
	for _, ids := range byGuild {
		out = append(out, ids...)
	}
	return out
}
