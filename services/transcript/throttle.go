package transcript

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/nijaru/yt-notes/config"
)

// fixedDelay blocks for the full delay after every fetch.
type fixedDelay struct {
	delay time.Duration
}

func FixedDelay(d time.Duration) Throttle {
	return &fixedDelay{delay: d}
}

func (f *fixedDelay) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tokenBucket allows one upstream fetch per interval on average, with a
// burst of one, so an idle process does not pause its first request.
type tokenBucket struct {
	limiter *rate.Limiter
}

func TokenBucket(interval time.Duration) Throttle {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &tokenBucket{limiter: rate.NewLimiter(limit, 1)}
}

func (t *tokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

type noThrottle struct{}

func NoThrottle() Throttle { return noThrottle{} }

func (noThrottle) Wait(ctx context.Context) error { return ctx.Err() }

// NewThrottle builds the configured policy.
func NewThrottle(cfg config.TranscriptConfig) (Throttle, error) {
	switch cfg.Throttle {
	case config.ThrottleFixed:
		return FixedDelay(cfg.ThrottleDelay), nil
	case config.ThrottleToken:
		return TokenBucket(cfg.ThrottleDelay), nil
	case config.ThrottleNone:
		return NoThrottle(), nil
	default:
		return nil, errors.Errorf("unknown throttle policy %q", cfg.Throttle)
	}
}
