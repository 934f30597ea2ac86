package middleware

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig carries separate budgets for the two client populations:
// anonymous booking traffic, limited per IP, and authenticated staff,
// limited per token.
type RateLimitConfig struct {
	PublicRPS   float64
	PublicBurst int
	StaffRPS    float64
	StaffBurst  int
}

// DefaultRateLimitConfig returns the fallback budgets: a tight per-IP limit
// for public booking and availability lookups, a wider one for the front
// desk.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PublicRPS:   20,
		PublicBurst: 40,
		StaffRPS:    100,
		StaffBurst:  200,
	}
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

const (
	bucketIdleTTL  = 10 * time.Minute
	pruneThreshold = 10000
)

// rateLimiterStore holds per-key buckets. Once the map grows past
// pruneThreshold, buckets idle longer than bucketIdleTTL are dropped before
// a new one is added, so one-off clients cannot grow the map without bound.
type rateLimiterStore struct {
	buckets map[string]*tokenBucket
	mu      sync.Mutex
}

func newRateLimiterStore() *rateLimiterStore {
	return &rateLimiterStore{buckets: make(map[string]*tokenBucket)}
}

func (s *rateLimiterStore) getBucket(key string, rate float64, burst int) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[key]; ok {
		return b
	}
	if len(s.buckets) >= pruneThreshold {
		s.prune(time.Now())
	}
	b := newTokenBucket(rate, burst)
	s.buckets[key] = b
	return b
}

// prune runs with the store lock held.
func (s *rateLimiterStore) prune(now time.Time) {
	for key, b := range s.buckets {
		if b.idleSince(now) > bucketIdleTTL {
			delete(s.buckets, key)
		}
	}
}

func hashToken(token string) string {
	h := fnv.New64a()
	h.Write([]byte(token))
	return strconv.FormatUint(h.Sum64(), 16)
}

// RateLimit budgets requests per client. Requests carrying a bearer token
// get the staff budget keyed per token so a busy clinic NAT does not starve
// the front desk; everything else shares a per-IP public budget. The limiter
// runs before token verification, so the token is trusted only for bucket
// selection: an invalid one still gets a 401 from authentication.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newRateLimiterStore()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rate, burst := cfg.PublicRPS, cfg.PublicBurst
			key := "ip:" + c.RealIP()
			if sub, ok := c.Get("auth_subject").(string); ok && sub != "" {
				rate, burst = cfg.StaffRPS, cfg.StaffBurst
				key = "sub:" + sub
			} else if tok := c.Request().Header.Get("Authorization"); tok != "" {
				rate, burst = cfg.StaffRPS, cfg.StaffBurst
				key = "tok:" + hashToken(tok)
			}

			bucket := store.getBucket(key, rate, burst)
			if !bucket.allow() {
				c.Response().Header().Set("Retry-After", strconv.Itoa(bucket.retryAfter()))
				c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatFloat(rate, 'f', 0, 64))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatFloat(rate, 'f', 0, 64))
			return next(c)
		}
	}
}
