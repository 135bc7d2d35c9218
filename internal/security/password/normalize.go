package password

import (
	"errors"
	"unicode/utf8"
)

// MaxBytes is bcrypt's input width. Bytes beyond it are silently ignored by
// the primitive, so we truncate explicitly and on a rune boundary: cutting a
// multi-byte code point in half would hash garbage for the last character.
const MaxBytes = 72

// ErrMissingCredential se retorna cuando no se suministró contraseña (nil).
// Un string vacío NO es un error: cuentas provider-only no tienen password local.
var ErrMissingCredential = errors.New("missing credential")

// Normalize prepara una contraseña para el hash de ancho fijo.
//
// nil → ErrMissingCredential. "" pasa sin cambios. Si el UTF-8 ocupa hasta
// MaxBytes, es la identidad. Si excede, corta al prefijo válido más largo de
// a lo sumo MaxBytes (nunca parte un code point).
func Normalize(p *string) (string, error) {
	if p == nil {
		return "", ErrMissingCredential
	}
	s := *p
	if len(s) <= MaxBytes {
		return s, nil
	}
	cut := MaxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], nil
}
