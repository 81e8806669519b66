package llm

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Failure taxonomy for the completion endpoint. The retry loop consults
// Retryable to decide whether an attempt may be repeated.
var (
	// ErrRateLimited: the endpoint throttled us (429). Retryable.
	ErrRateLimited = errors.New("completion endpoint rate limited")

	// ErrConnectivity: the endpoint was unreachable or timed out. Retryable.
	ErrConnectivity = errors.New("completion endpoint unreachable")

	// ErrServer: the endpoint failed server-side (5xx). Retryable.
	ErrServer = errors.New("completion endpoint server error")

	// ErrClient: the endpoint rejected the request (4xx). Never retried.
	ErrClient = errors.New("completion endpoint rejected request")

	// ErrRetriesExhausted: every attempt failed with a retryable error.
	ErrRetriesExhausted = errors.New("completion retries exhausted")
)

// Retryable reports whether a classified failure may be retried while
// attempts remain.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrConnectivity) ||
		errors.Is(err, ErrServer)
}

// classifyStatus maps an upstream HTTP status to the failure taxonomy.
func classifyStatus(status int, detail string) error {
	switch {
	case status == 429:
		return fmt.Errorf("%w: upstream 429: %s", ErrRateLimited, detail)
	case status >= 500 && status <= 599:
		return fmt.Errorf("%w: upstream %d: %s", ErrServer, status, detail)
	case status >= 400 && status <= 499:
		return fmt.Errorf("%w: upstream %d: %s", ErrClient, status, detail)
	default:
		return fmt.Errorf("unexpected upstream status %d: %s", status, detail)
	}
}

// classifyTransport maps a transport-level error to the taxonomy.
// Transient network failures become ErrConnectivity; anything else is
// surfaced as-is and not retried.
func classifyTransport(err error) error {
	if isTransientNetError(err) {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return err
}

// isTransientNetError reports whether a network error is worth retrying.
func isTransientNetError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write" {
			return true
		}
	}

	// Wrapped errors sometimes only expose a message.
	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
