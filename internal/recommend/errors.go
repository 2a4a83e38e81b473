// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"errors"
	"fmt"

	"github.com/pdiddy/feastfit/internal/upstream"
)

// Error classes surfaced by the pipeline. Callers match them with errors.Is
// and map them to transport status codes.
var (
	// ErrValidation means a required request field is missing or invalid.
	// No upstream call was made.
	ErrValidation = errors.New("invalid request")

	// ErrRateLimited means the client exceeded its request window.
	ErrRateLimited = errors.New("too many requests, please try again later")

	// ErrConfiguration means a required credential or setting is missing.
	ErrConfiguration = errors.New("service is not configured")

	// ErrUpstream means the upstream call failed or returned non-success.
	ErrUpstream = errors.New("upstream search failed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classifyUpstream wraps an upstream client error in the matching class.
func classifyUpstream(err error) error {
	if errors.Is(err, upstream.ErrMissingAPIKey) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
