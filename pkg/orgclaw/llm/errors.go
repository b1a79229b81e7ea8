package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies provider failures so the caller can pick between
// retry, fallback and the circuit breaker.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimit
	KindOverloaded
	KindTimeout
	KindAuth
	KindContextLength
	KindBadRequest
	KindRetryable
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindOverloaded:
		return "overloaded"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindContextLength:
		return "context_length"
	case KindBadRequest:
		return "bad_request"
	case KindRetryable:
		return "retryable"
	case KindFatal:
		return "fatal"
	}
	return "unknown"
}

// Retryable reports whether a same-provider retry can help.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimit, KindOverloaded, KindTimeout, KindRetryable:
		return true
	}
	return false
}

// ProviderError wraps a provider failure with its kind and HTTP status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       ErrorKind
	Body       string
}

func (e *ProviderError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("llm %s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, body)
}

// KindOf extracts the error kind, defaulting to KindUnknown.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, errTimeout) {
		return KindTimeout
	}
	return KindUnknown
}

var errTimeout = errors.New("llm: request timed out")

// classifyStatus maps an HTTP failure to an error kind.
func classifyStatus(status int, body string) ErrorKind {
	lower := strings.ToLower(body)
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimit
	case status == 408 || status == 504:
		return KindTimeout
	case status == 503 || strings.Contains(lower, "overloaded"):
		return KindOverloaded
	case status == 400 && (strings.Contains(lower, "context length") ||
		strings.Contains(lower, "maximum context") ||
		strings.Contains(lower, "too many tokens")):
		return KindContextLength
	case status == 400 || status == 404 || status == 422:
		return KindBadRequest
	case status >= 500:
		return KindRetryable
	}
	return KindUnknown
}
