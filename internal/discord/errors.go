package discord

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUpstreamTimeout: la llamada al provider excedió su presupuesto de tiempo.
var ErrUpstreamTimeout = errors.New("upstream timeout")

// UpstreamError: el provider respondió non-2xx. Se conserva el status para
// que el boundary pueda reenviarlo (502/forwarded) en vez de degradar a
// "roles vacíos".
type UpstreamError struct {
	Endpoint string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("discord %s: http %d", e.Endpoint, e.Status)
}

// IsUpstreamError extrae un *UpstreamError de una cadena de errores.
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// wrapTransport clasifica errores de red: timeout → ErrUpstreamTimeout;
// cancelación del request entrante se propaga tal cual (no es culpa del
// provider y no debe reintentarse).
func wrapTransport(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrUpstreamTimeout
	}
	return err
}
