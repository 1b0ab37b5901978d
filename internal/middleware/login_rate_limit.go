package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// DefaultLoginAttemptsPerMinute applies when no limit is configured.
const DefaultLoginAttemptsPerMinute = 5

const loginRateKeyPrefix = "artsi:rl:login:"

// LoginRateLimit limits login and signup attempts per email address, or per
// client IP when the body names none. With Redis the window is a fixed minute
// shared by every instance; without it each process keeps a token bucket per
// key.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = DefaultLoginAttemptsPerMinute
	}
	local := newLocalLimiter(maxPerMin)
	return func(c *fiber.Ctx) error {
		subject := loginSubject(c)
		if cache == nil {
			if !local.allow(subject) {
				return tooManyAttempts()
			}
			return c.Next()
		}

		key := loginRateKeyPrefix + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return tooManyAttempts()
		}
		return c.Next()
	}
}

func loginSubject(c *fiber.Ctx) string {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&req)
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return "email:" + email
	}
	return "ip:" + c.IP()
}

func tooManyAttempts() error {
	return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
}

type localLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*rate.Limiter
}

func newLocalLimiter(perMin int) *localLimiter {
	return &localLimiter{perMin: perMin, limiters: make(map[string]*rate.Limiter)}
}

// Buckets that have refilled completely are dropped once the map grows past
// this size.
const localLimiterSweepAt = 1024

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= localLimiterSweepAt {
			l.sweepLocked(time.Now())
		}
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *localLimiter) sweepLocked(now time.Time) {
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limiters, key)
		}
	}
}
