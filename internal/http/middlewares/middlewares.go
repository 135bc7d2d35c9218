// Package middlewares contiene los middlewares HTTP del servicio.
package middlewares

import "net/http"

// Middleware es la firma estándar de middlewares; chi la acepta directo en
// r.Use.
type Middleware func(http.Handler) http.Handler
