// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/imgtools/internal/logctx"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
)

// RetryPolicy describes how transient HTTP failures are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// 3 means at most 4 requests.
	MaxRetries int

	// BaseDelay is the wait before the first retry. Each following retry
	// waits twice as long as the previous one.
	BaseDelay time.Duration

	// RetryStatuses is the set of response status codes that are retried.
	RetryStatuses map[int]bool
}

// DefaultRetryPolicy retries 429 and the common 5xx gateway/server errors
// three times, waiting 1s, 2s and 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseDelay,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// Retryable reports whether a response with status should be retried.
func (p RetryPolicy) Retryable(status int) bool {
	return p.RetryStatuses[status]
}

// Backoff returns the wait before retry number attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.BaseDelay << attempt
}

// Do executes req with client, retrying transport errors and retryable
// statuses according to policy.
//
// On each retryable response the body is drained and closed before sleeping.
// If ctx is cancelled during a backoff wait Do returns ctx.Err(). After
// exhausting retries on a retryable status the last response is returned so
// the caller can inspect it; after exhausting retries on transport errors the
// last error is returned.
func Do(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	logger := logctx.LoggerFromContext(ctx)
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, err
			}
			logger.Debug("request failed, retrying", "url", req.URL.String(), "attempt", attempt+1, "err", err)
		} else {
			if !policy.Retryable(resp.StatusCode) || attempt >= maxRetries {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Debug("transient HTTP status, retrying", "url", req.URL.String(), "status", resp.StatusCode, "attempt", attempt+1)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Backoff(attempt)):
		}
	}
}
