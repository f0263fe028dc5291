package transport

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// tokenBucket wraps rate.Limiter to implement RateLimiter.
type tokenBucket struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond requests per second with the given
// burst. A non-positive perSecond disables limiting and returns nil.
func NewRateLimiter(perSecond float64, burst int) RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(perSecond)))
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
