package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds surfaced by providers. The pipeline decides what to do with
// each; no retry happens at this layer.
var (
	ErrTimeout     = errors.New("provider call timed out")
	ErrAuth        = errors.New("provider authentication failed")
	ErrRateLimited = errors.New("provider rate limited")
	ErrMalformed   = errors.New("malformed provider response")
	ErrUnavailable = errors.New("provider unavailable")
)

func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func classifyContext(ctx context.Context, err error) (error, bool) {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrTimeout, err), true
	}
	if errors.Is(err, context.Canceled) {
		return err, true
	}
	return nil, false
}
