package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimit          = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"
	msgRateLimitExceeded     = "rate limit exceeded"

	globalRequestsPerSecond = 100
	globalBurst             = 200
)

type visitor struct {
	limiter *rate.Limiter
	// lastSeen is unix nanos, guarded by RateLimiter.mu.
	lastSeen int64
}

// RateLimiter is a token bucket per client key. Idle buckets are dropped by
// Sweep.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	keyFunc  func(c echo.Context) string
	now      func() time.Time
}

// NewRateLimiter creates a limiter keyed by client IP.
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		keyFunc:  clientIPKey,
		now:      time.Now,
	}
}

func clientIPKey(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// credentialKey scopes buckets to IP and route, so a burst of failed logins
// does not also lock the caller out of requesting a reset.
func credentialKey(c echo.Context) string {
	return "ip:" + c.RealIP() + "|" + c.Request().Method + " " + c.Path()
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now().UnixNano()
	return v.limiter
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.now(), 1)
}

// Sweep forgets keys not seen for idle and returns how many were removed.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := rl.now().Add(-idle).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen < cutoff {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware returns an Echo middleware function for rate limiting
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(rl.keyFunc(c))
			now := rl.now()
			h := c.Response().Header()
			h.Set(headerRateLimit, strconv.Itoa(rl.burst))

			if !limiter.AllowN(now, 1) {
				h.Set(headerRateLimitRemaining, "0")
				h.Set(headerRetryAfter, strconv.Itoa(rl.retryAfterSeconds()))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": msgRateLimitExceeded,
				})
			}

			h.Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.TokensAt(now))))
			return next(c)
		}
	}
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.rate <= 0 {
		return 1
	}
	secs := int(math.Ceil(1 / float64(rl.rate)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// NewLoginRateLimiter guards credential endpoints: login, 2FA and reset.
// Buckets are per IP and per route.
func NewLoginRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	rl := NewRateLimiter(requestsPerSecond, burst)
	rl.keyFunc = credentialKey
	return rl
}

// NewGlobalRateLimiter creates a lenient limiter for general traffic
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(globalRequestsPerSecond, globalBurst)
}
