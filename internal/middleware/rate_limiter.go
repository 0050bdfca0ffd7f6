package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nazim1903/Businesstracker/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// window tracks request counts for one client IP.
type window struct {
	count int
	end   time.Time
}

// RateLimiter is a fixed-window per-IP limiter.
type RateLimiter struct {
	limit  int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
	now     func() time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, period: period, clients: map[string]*window{}, now: time.Now}
}

// allow counts one request from ip and reports whether it is within the limit,
// along with the end of the current window.
func (l *RateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(end).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// Purge drops expired windows every interval until ctx is done.
func (l *RateLimiter) Purge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			purged := 0
			for ip, w := range l.clients {
				if now.After(w.end) {
					delete(l.clients, ip)
					purged++
				}
			}
			remaining := len(l.clients)
			l.mu.Unlock()
			if purged > 0 {
				log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter windows purged")
			}
		}
	}
}
