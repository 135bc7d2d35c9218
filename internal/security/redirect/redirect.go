// Package redirect clasifica destinos de redirección suministrados por el
// caller. Solo clasifica: un destino rechazado NUNCA se reemplaza acá, el
// caller debe caer a un destino fijo (ver SafeOrDefault).
package redirect

import (
	"net/url"
	"strings"
)

// IsSafe reports whether target can be used as an HTTP redirect destination.
//
// Reglas, en orden:
//  1. Trim de whitespace; vacío: rechazar. La clasificación corre sobre el
//     string trimeado: los browsers quitan whitespace del Location, así que
//     " //host" es tan protocol-relative como "//host".
//  2. Backslashes se normalizan a "/" (algunos parsers tratan "\\host" como
//     protocol-relative).
//  3. Percent-decode una sola vez; si falla, rechazar.
//  4. Parse; si falla, rechazar.
//  5. Sin scheme: cualquier host (protocol-relative "//host") o path que
//     empiece con "//" se rechaza; el resto es un path same-origin válido.
//  6. http: solo localhost (ignorando puerto). Plaintext solo para loopback local.
//  7. https: localhost o un host del allow-list (ignorando puerto).
//  8. Cualquier otro scheme (ftp, javascript, data, ...): rechazar.
//
// Nunca hace panic; cualquier falla interna resuelve a false.
func IsSafe(target string, allowedHTTPSHosts map[string]struct{}) (safe bool) {
	defer func() {
		if recover() != nil {
			safe = false
		}
	}()

	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}

	normalized := strings.ReplaceAll(target, `\`, "/")

	decoded, err := url.PathUnescape(normalized)
	if err != nil {
		return false
	}

	u, err := url.Parse(decoded)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())

	switch strings.ToLower(u.Scheme) {
	case "":
		// Protocol-relative o "//" disfrazado en el path. Se chequea también
		// el string decodificado: "///host" parsea con host vacío.
		if u.Host != "" || strings.HasPrefix(u.Path, "//") || strings.HasPrefix(decoded, "//") {
			return false
		}
		return true
	case "http":
		return host == "localhost"
	case "https":
		if host == "localhost" {
			return true
		}
		_, ok := allowedHTTPSHosts[host]
		return ok
	default:
		return false
	}
}

// SafeOrDefault retorna target si es seguro, o fallback si no. Envuelve el
// branch para que el camino inseguro no pueda alcanzarse por omisión.
func SafeOrDefault(target, fallback string, allowedHTTPSHosts map[string]struct{}) string {
	if IsSafe(target, allowedHTTPSHosts) {
		return target
	}
	return fallback
}
