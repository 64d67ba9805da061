package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"identity/internal/logs"
	"identity/internal/models"
)

// RateLimiter — счётчики обращений на адрес в часовом и суточном окнах.
// Применяется только к публичным endpoint'ам сброса пароля; сам менеджер
// паролей лимитов не знает.
type RateLimiter struct {
	mu      sync.Mutex
	perHour int
	perDay  int
	seen    map[string]*counters
	now     func() time.Time
}

type counters struct {
	hourStart time.Time
	hourCount int
	dayStart  time.Time
	dayCount  int
}

func NewRateLimiter(perHour, perDay int) *RateLimiter {
	return &RateLimiter{
		perHour: perHour,
		perDay:  perDay,
		seen:    make(map[string]*counters),
		now:     time.Now,
	}
}

// Allow учитывает обращение и говорит, не превышен ли лимит.
func (rl *RateLimiter) Allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.seen[addr]
	if !ok {
		c = &counters{hourStart: now, dayStart: now}
		rl.seen[addr] = c
	}
	if now.Sub(c.hourStart) >= time.Hour {
		c.hourStart, c.hourCount = now, 0
	}
	if now.Sub(c.dayStart) >= 24*time.Hour {
		c.dayStart, c.dayCount = now, 0
	}
	if (rl.perHour > 0 && c.hourCount >= rl.perHour) ||
		(rl.perDay > 0 && c.dayCount >= rl.perDay) {
		return false
	}
	c.hourCount++
	c.dayCount++
	return true
}

// Middleware отвечает 429, когда бюджет адреса исчерпан.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !rl.Allow(host) {
			logs.Logger.Warnf("rate limit exceeded ip=%s uri=%s reqid=%s",
				host, r.RequestURI, GetRequestID(r))
			models.WriteProblem(w, http.StatusTooManyRequests,
				"Too Many Requests", "rate limit exceeded, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
