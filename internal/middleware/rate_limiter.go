package middleware

// rate_limiter.go
// In-memory fixed-window limiters keyed by client IP. One instance guards
// the login endpoint, one the rest of the API. The backend runs as a single
// instance, so the counters live in process memory.

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jdirocco/forno/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const limiterPurgeInterval = 5 * time.Minute

type ipWindow struct {
	count int
	until time.Time
}

// ipLimiter counts hits per IP within a rolling window.
type ipLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[string]*ipWindow
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{limit: limit, window: window, seen: make(map[string]*ipWindow)}
	go l.purge()
	return l
}

// allow counts one hit for ip and reports whether it stayed within the
// limit, together with the instant the current window closes.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.seen[ip]
	if !ok || now.After(w.until) {
		w = &ipWindow{until: now.Add(l.window)}
		l.seen[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.until
}

// purge drops expired windows so the map does not grow with every IP that
// ever hit the API.
func (l *ipLimiter) purge() {
	ticker := time.NewTicker(limiterPurgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		removed := 0
		for ip, w := range l.seen {
			if now.After(w.until) {
				delete(l.seen, ip)
				removed++
			}
		}
		remaining := len(l.seen)
		l.mu.Unlock()

		if removed > 0 {
			log.Debug().Int("removed", removed).Int("remaining", remaining).
				Msg("rate limiter: purged idle clients")
		}
	}
}

const loginAttemptsPerMinute = 20

// LoginRateLimiter slows down credential guessing on /api/auth/login.
func LoginRateLimiter() gin.HandlerFunc {
	l := newIPLimiter(loginAttemptsPerMinute, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.allow(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Troppi tentativi di accesso. Riprova tra 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter caps the whole API at limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newIPLimiter(limit, window)
	return func(c *gin.Context) {
		ok, until := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(until).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Troppe richieste. Riprova tra qualche istante."))
			return
		}
		c.Next()
	}
}
