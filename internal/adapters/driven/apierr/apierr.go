// Package apierr classifies remote API failures for the adapters that
// call embedding and generation services over HTTP.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// FromStatus converts a non-2xx HTTP status into an error. Rate limits
// and server-side failures are marked transient so the caller's retry
// policy picks them up; client errors (bad key, bad request) are final.
func FromStatus(service string, status int, body string) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrTransient, service, status, body)
	}
	return fmt.Errorf("%s returned status %d: %s", service, status, body)
}

// FromRequest converts a transport-level failure (connection refused,
// timeout, cancelled context) into an error. Everything except an
// explicit caller cancellation is transient.
func FromRequest(service string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request cancelled: %w", service, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s request timed out: %v", domain.ErrTransient, service, err)
	}
	return fmt.Errorf("%w: %s request failed: %v", domain.ErrTransient, service, err)
}
