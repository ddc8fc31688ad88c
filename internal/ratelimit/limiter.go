package ratelimit

import "context"

// RateLimiter throttles outbound sends for a named key, e.g. "sms".
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Wait(ctx context.Context, key string) error
}
