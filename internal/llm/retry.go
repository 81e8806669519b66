package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/internal/metrics"
)

// backoffDelay computes the delay before retrying after failed attempt n
// (0-indexed): baseDelay × 2^n. Pure exponential, no jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	// Cap the exponent to prevent overflow.
	const maxExponent = 10
	if attempt > maxExponent {
		attempt = maxExponent
	}
	return base << uint(attempt)
}

// doWithRetry invokes doOnce up to cfg.MaxAttempts times. Rate limits,
// transient network failures and upstream 5xx are retried with
// exponential backoff; client errors and anything unexpected surface
// immediately. After the final attempt fails the caller gets
// ErrRetriesExhausted wrapping the last classified failure, so "upstream
// never succeeded" stays distinguishable from "upstream rejected
// outright".
func (c *client) doWithRetry(
	ctx context.Context,
	doOnce func(ctx context.Context) (*http.Response, error),
) (*http.Response, error) {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := doOnce(ctx)
		duration := time.Since(start)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		c.logger.Debug("completion attempt",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}

			err = classifyTransport(err)
			if !Retryable(err) {
				metrics.CompletionCallsTotal.WithLabelValues("error").Inc()
				return nil, err
			}
			lastErr = err

		case status >= 200 && status < 300:
			metrics.CompletionCallsTotal.WithLabelValues("ok").Inc()
			return resp, nil

		default:
			detail := readErrorDetail(resp)
			classified := classifyStatus(status, detail)
			if !Retryable(classified) {
				metrics.CompletionCallsTotal.WithLabelValues("client_error").Inc()
				return nil, classified
			}
			lastErr = classified
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := backoffDelay(c.cfg.BaseDelay, attempt)
		c.logger.Debug("backing off before retry",
			zap.Duration("backoff", delay),
			zap.Int("next_attempt", attempt+2),
		)
		metrics.CompletionRetriesTotal.Inc()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	metrics.CompletionCallsTotal.WithLabelValues("exhausted").Inc()
	c.logger.Warn("completion exhausted all attempts",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)

	if lastErr == nil {
		lastErr = errors.New("unknown upstream failure")
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}

// readErrorDetail extracts a short failure description from an upstream
// error response and closes its body so the connection can be reused.
func readErrorDetail(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	return parseProviderError(body)
}
