package tmdb

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimiter gates outbound TMDB calls with a token bucket
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter allows perSecond requests with bursts up to burst.
// A non-positive rate disables limiting.
func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if perSecond <= 0 {
		return &rateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// wait blocks until a request may be made or ctx is done
func (r *rateLimiter) wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

