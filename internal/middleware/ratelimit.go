package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/webutil"

	"golang.org/x/time/rate"
)

// IPRateLimiter はクライアントIPごとのトークンバケットです。
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter は1分あたり perMinute 回、burst 回まで連続で許可するリミッタを作ります。
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// reserve は許可されれば 0、拒否なら次に許可されるまでの待ち時間を返します。
func (l *IPRateLimiter) reserve(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	entry, ok := l.limiters[key]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	res := entry.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Minute
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		// 拒否したリクエストはトークンを消費しない
		res.CancelAt(now)
	}
	return delay
}

func (l *IPRateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, key)
		}
	}
}

// Middleware は超過時に 429 と Retry-After (秒) を返します。
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if delay := l.reserve(ip); delay > 0 {
			logger := GetLogger(r.Context())
			logger.Warn("Rate limit exceeded", "client_ip", ip, "retry_after", delay.String())
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			webutil.HandleError(w, logger, model.NewAppError("TOO_MANY_REQUESTS", "リクエストが多すぎます。しばらくしてから再度お試しください。", "", model.ErrTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP は chi の RealIP 適用後の RemoteAddr からホスト部分を取り出します。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
