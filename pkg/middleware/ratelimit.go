package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterTTL はアクセスの途絶えたクライアントのリミッターを破棄するまでの時間。
const limiterTTL = 10 * time.Minute

// clientLimiters はクライアントIPごとのトークンバケット。
type clientLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
	// lastSweep は最後に古いバケットを掃除した時刻。
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// get はクライアントのリミッターを返す。古いバケットは取得時にまとめて破棄する。
func (l *clientLimiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterTTL {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > limiterTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// RateLimit はクライアントIPごとにリクエスト数を制限するGinミドルウェアを返す。
// perMinuteは1分あたりの補充数、burstは連続して許可する数。
// 制限を超えた場合は429とRetry-Afterを返し、onLimitがあればその画面を描画する。
func RateLimit(perMinute float64, burst int, onLimit View) gin.HandlerFunc {
	limiters := &clientLimiters{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
	if onLimit == nil {
		onLimit = func(c *gin.Context, status int) { c.String(status, "Too many attempts. Please try again later.") }
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		now := time.Now()
		r := limiters.get(ip, now).ReserveN(now, 1)
		if !r.OK() {
			onLimit(c, http.StatusTooManyRequests)
			c.Abort()
			return
		}
		if delay := r.DelayFrom(now); delay > 0 {
			r.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			onLimit(c, http.StatusTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
