// Package ratelimit throttles mutating operations per user with a trailing
// sliding window. Two interchangeable stores are provided: an in-process
// map for single-instance deployments and Redis for shared state.
package ratelimit

import (
	"context"
	"time"
)

// Defaults: five operations per user per minute.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Minute
)

// Result describes the outcome of one acquisition attempt.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is only set when the attempt was denied.
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Limiter admits at most Limit operations per key within a trailing window.
type Limiter interface {
	TryAcquire(ctx context.Context, key string) (Result, error)
}

// UserKey namespaces a user id.
func UserKey(userID string) string {
	return "user:" + userID
}

// retryAfter rounds the wait up to a whole second for Retry-After headers.
func retryAfter(now, resetAt time.Time) time.Duration {
	d := resetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return (d + time.Second - 1) / time.Second * time.Second
}
