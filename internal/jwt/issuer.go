// Package jwt emite y verifica los session tokens del servicio.
//
// Tokens HS256 firmados con un único secret server-side, sub = user ID,
// TTL fijo desde configuración. La verificación es computación pura, apta
// para el hot path de cada request protegido.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid: firma inválida, malformado, o claims inconsistentes.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired: firma válida pero el token ya venció.
	ErrTokenExpired = errors.New("token expired")
)

// Issuer firma y verifica session tokens con un secret compartido.
type Issuer struct {
	Iss    string
	secret []byte
	ttl    time.Duration
}

// NewIssuer construye un Issuer. El secret no puede ser vacío: la validación
// de configuración en el arranque es responsabilidad del caller (main), acá
// solo se refuerza el invariante.
func NewIssuer(iss, secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: empty signing secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Iss: iss, secret: []byte(secret), ttl: ttl}, nil
}

// TTL devuelve el time-to-live configurado.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue emite un token para userID. Retorna el token firmado y su expiry.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify valida firma y expiry y devuelve el user ID (sub).
//
// Distingue expirado de inválido para que capas superiores puedan loguear la
// causa; el boundary HTTP colapsa ambos en un 401 uniforme.
func (i *Issuer) Verify(token string) (string, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		return i.secret, nil
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !tok.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}
	if i.Iss != "" {
		if iss, _ := claims["iss"].(string); iss != i.Iss {
			return "", ErrTokenInvalid
		}
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}
