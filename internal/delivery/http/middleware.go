package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CORSMiddleware allows the back-office web app; entries ending in "*" match by prefix
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return isAllowedOrigin(origin, allowedOrigins)
		},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok {
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// LoggerMiddleware logs every request through zerolog
func LoggerMiddleware() gin.HandlerFunc {
	logger := logging.GetLogger("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

// RecoveryMiddleware recovers from panics and answers 500
func RecoveryMiddleware() gin.HandlerFunc {
	logger := logging.GetLogger("http")

	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// ipRateLimiter hands out one token bucket per client IP
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		idleTTL:   3 * time.Minute,
		lastSweep: time.Now(),
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idleTTL {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits each client IP to perMinute requests per minute.
// perMinute <= 0 disables limiting.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newIPRateLimiter(perMinute)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": domain.ErrRateLimited.Error()})
			return
		}
		c.Next()
	}
}
