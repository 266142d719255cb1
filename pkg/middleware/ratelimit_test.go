package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// TestRateLimit はRateLimitミドルウェアを検証する。
func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("バースト数を超えると429を返すこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.POST("/login", RateLimit(1, 2, nil), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes = append(codes, w.Code)
			last = w
		}

		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("codes = %v", codes)
		}
		if last.Header().Get("Retry-After") == "" {
			t.Error("Retry-Afterが設定されていない")
		}
	})

	t.Run("クライアントIPごとに独立して制限されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.POST("/login", RateLimit(1, 1, nil), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("%s: ステータスコード = %d, want %d", addr, w.Code, http.StatusOK)
			}
		}
	})

	t.Run("古いバケットは破棄されること", func(t *testing.T) {
		t.Parallel()

		l := &clientLimiters{limit: 1, burst: 1, buckets: make(map[string]*bucket)}
		start := time.Now()
		l.get("a", start)
		l.get("b", start.Add(limiterTTL+time.Second))
		l.get("b", start.Add(2*limiterTTL+2*time.Second))

		if _, ok := l.buckets["a"]; ok {
			t.Error("古いバケットが残っている")
		}
		if _, ok := l.buckets["b"]; !ok {
			t.Error("使用中のバケットが破棄された")
		}
	})
}
