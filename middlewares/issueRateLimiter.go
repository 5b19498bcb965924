package middlewares

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"infrasense-be/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// DailyWindow is the span over which submissions are counted.
const DailyWindow = 24 * time.Hour

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter counts submissions per caller.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, prefix string, limit int) *RedisLimiter {
	if prefix == "" {
		prefix = "issue_limit"
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: DailyWindow}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	userKey := l.prefix + ":" + key

	count, err := l.client.Incr(ctx, userKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incrementing %s: %w", userKey, err)
	}

	// TTL only on the first hit so the window is anchored at that request.
	if count == 1 {
		if err := l.client.Expire(ctx, userKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("setting TTL on %s: %w", userKey, err)
		}
	}

	if count <= int64(l.limit) {
		return Decision{Allowed: true}, nil
	}

	retryAfter, err := l.client.TTL(ctx, userKey).Result()
	if err != nil || retryAfter < 0 {
		retryAfter = l.window
	}
	return Decision{RetryAfter: retryAfter}, nil
}

// LocalLimiter is the single-process fallback used when Redis is not
// configured. Each caller gets a token bucket refilled over the window.
// Buckets that have refilled completely are dropped on a periodic sweep;
// a fresh bucket behaves identically.
type LocalLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*rate.Limiter
	every      rate.Limit
	burst      int
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit < 1 {
		limit = 1
	}
	return &LocalLimiter{
		buckets:    make(map[string]*rate.Limiter),
		every:      rate.Every(window / time.Duration(limit)),
		burst:      limit,
		sweepEvery: window / time.Duration(limit),
		now:        time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweep(now)
	}
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	r := bucket.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

// sweep must be called with mu held.
func (l *LocalLimiter) sweep(now time.Time) {
	for key, bucket := range l.buckets {
		if bucket.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// IssueRateLimiter caps submissions per authenticated caller. It must run
// after AuthMiddleware.
func IssueRateLimiter(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id == nil || id.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), id.UserID)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate limiter unavailable"})
			return
		}

		if !decision.Allowed {
			_ = c.Error(fmt.Errorf("user %s: %w", id.UserID, apperrors.ErrRateLimited))
			c.Header("Retry-After", fmt.Sprintf("%d", int64(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       apperrors.ErrRateLimited.Error(),
				"retry_after": decision.RetryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
