// Package ratelimiter throttles payload ingestion with a token bucket.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter admits payloads at a sustained rate with a bounded burst.
//
// Payloads coming up from the native stack arrive in bursts when a remote
// controller pages through a large folder, so the bucket absorbs a page
// worth of responses and then settles to the sustained rate.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter.
//
// Parameters:
//   - perSecond: Sustained rate in payloads per second. 0 disables limiting.
//   - burst: Bucket capacity. 0 defaults to perSecond.
//
// Example:
//
//	// 50 payloads/s sustained, up to 100 at once
//	limiter := New(50, 100)
func New(perSecond, burst uint) *RateLimiter {
	if perSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = perSecond
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(burst)),
	}
}

// Unlimited reports whether the limiter admits everything.
func (r *RateLimiter) Unlimited() bool {
	return r.limiter.Limit() == rate.Inf
}

// Allow consumes a token if one is available and reports whether it did.
// It never blocks; callers drop the payload when it returns false.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns:
//   - nil if a token was acquired
//   - the context error, or an error if the wait would exceed the deadline
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// SetLimit changes the sustained rate and burst. 0 disables limiting.
func (r *RateLimiter) SetLimit(perSecond, burst uint) {
	if perSecond == 0 {
		r.limiter.SetLimit(rate.Inf)
		return
	}
	if burst == 0 {
		burst = perSecond
	}
	r.limiter.SetLimit(rate.Limit(perSecond))
	r.limiter.SetBurst(int(burst))
}

// Tokens returns the number of tokens currently in the bucket.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
