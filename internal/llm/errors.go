package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrMissingAPIKey = errors.New("llm: api key not configured")
	ErrUnauthorized  = errors.New("llm: provider rejected credentials")
	ErrRateLimited   = errors.New("llm: rate limited")
	ErrUpstream      = errors.New("llm: upstream error")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrTimeout       = errors.New("llm: request timed out")
)

// StatusError is a non-2xx answer that is not an auth or rate limit problem.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// statusErr maps an HTTP status from a provider onto the error taxonomy.
func statusErr(provider string, code int, msg string) error {
	switch code {
	case 401, 403:
		return fmt.Errorf("%s: %w: %s", provider, ErrUnauthorized, msg)
	case 429:
		return fmt.Errorf("%s: %w: %s", provider, ErrRateLimited, msg)
	}
	return &StatusError{Provider: provider, Code: code, Message: msg}
}

// transportErr classifies an error that carried no HTTP status.
func transportErr(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// *url.Error prints the request URL; keep only the cause.
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return fmt.Errorf("%s: %w: %v", provider, ErrUpstream, err)
}
