package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrorKind classifies provider failures. The closed set lets callers react
// to the category without parsing message text.
type ErrorKind int

const (
	ErrNetwork ErrorKind = iota
	ErrAuth
	ErrRateLimit
	ErrMalformed
	ErrServer
	ErrCancelled
)

// Error is the failure type returned by every provider call. None of these
// are retried automatically; rate-limit errors carry the parsed retry-after
// hint for a future retry layer.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	RetryAfter int // seconds, 0 when unknown
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrAuth:
		if e.Message == "" {
			return "authentication failed: invalid API key"
		}
		return fmt.Sprintf("authentication failed: %s", e.Message)
	case ErrRateLimit:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("rate limit exceeded. retry after %d seconds", e.RetryAfter)
		}
		return "rate limit exceeded. please try again later"
	case ErrMalformed:
		return fmt.Sprintf("invalid response from %s: %s", e.Provider, e.Message)
	case ErrServer:
		return fmt.Sprintf("server error from %s: %s", e.Provider, e.Message)
	case ErrCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("failed to reach %s: %s", e.Provider, e.Message)
	}
}

// IsCancelled reports whether err is a cancelled provider call
func IsCancelled(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == ErrCancelled
}

// errorFromStatus maps a non-2xx HTTP response to a typed error
func errorFromStatus(status int, providerName, body string) *Error {
	body = strings.TrimSpace(body)
	switch {
	case status == 401 || status == 403:
		return &Error{Kind: ErrAuth, Provider: providerName, Message: body}
	case status == 404:
		return &Error{Kind: ErrMalformed, Provider: providerName, Message: "endpoint or model not found: " + body}
	case status == 429:
		return &Error{Kind: ErrRateLimit, Provider: providerName, Message: body, RetryAfter: parseRetryAfter(body)}
	case status >= 500:
		return &Error{Kind: ErrServer, Provider: providerName, Message: body}
	default:
		return &Error{Kind: ErrMalformed, Provider: providerName, Message: fmt.Sprintf("status %d: %s", status, body)}
	}
}

// parseRetryAfter pulls a "retry in Ns" hint out of a 429 body when present
func parseRetryAfter(body string) int {
	_, rest, ok := strings.Cut(body, "retry in ")
	if !ok {
		return 0
	}
	num, _, ok := strings.Cut(rest, "s")
	if !ok {
		return 0
	}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(num), 64); err == nil && secs > 0 {
		return int(secs + 0.999)
	}
	return 0
}

// errorFromTransport maps a failed HTTP round trip to a typed error
func errorFromTransport(err error, providerName string) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrCancelled, Provider: providerName}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrNetwork, Provider: providerName, Message: fmt.Sprintf("request timeout after %d seconds", int(requestTimeout.Seconds()))}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: ErrNetwork, Provider: providerName, Message: fmt.Sprintf("request timeout after %d seconds", int(requestTimeout.Seconds()))}
	}
	return &Error{Kind: ErrNetwork, Provider: providerName, Message: "cannot connect. check if the service is running and the URL is correct"}
}
