package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"sistemaservicios/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per client IP. Expired windows are purged every purgeInterval.

const purgeInterval = 5 * time.Minute

type ventana struct {
	count int
	fin   time.Time
}

type limiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	ventanas map[string]*ventana
}

// RateLimiter allows limit requests per window for each client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := &limiter{limit: limit, window: window, ventanas: map[string]*ventana{}}
	go l.purgar()

	return func(c *gin.Context) {
		now := time.Now()
		if ok, fin := l.permitir(c.ClientIP(), now); !ok {
			c.Header("Retry-After", retryAfter(fin, now))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// retryAfter is the Retry-After value in delta-seconds, rounded up.
func retryAfter(fin, now time.Time) string {
	seg := int(math.Ceil(fin.Sub(now).Seconds()))
	if seg < 1 {
		seg = 1
	}
	return strconv.Itoa(seg)
}

func (l *limiter) permitir(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ventanas[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.ventanas[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *limiter) purgar() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		l.mu.Lock()
		purged := 0
		for ip, v := range l.ventanas {
			if now.After(v.fin) {
				delete(l.ventanas, ip)
				purged++
			}
		}
		restantes := len(l.ventanas)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", restantes).Msg("rate limiter purged")
		}
	}
}
