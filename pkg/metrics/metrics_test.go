package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestMiddleware はリクエストの記録を検証する。
func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/projects/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/projects/1", "/projects/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/projects/:id", "200")); got != 2 {
		t.Errorf("/projects/:id の件数 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched の件数 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpInFlight); got != 0 {
		t.Errorf("処理中の数 = %v, want 0", got)
	}
}

// TestObserveAPICall はAPI呼び出しの記録を検証する。
func TestObserveAPICall(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAPICall(http.MethodGet, http.StatusUnauthorized, 10*time.Millisecond)
	m.ObserveAPICall(http.MethodGet, 0, time.Millisecond)

	if got := testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("GET", "401")); got != 1 {
		t.Errorf("401の件数 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("GET", "error")); got != 1 {
		t.Errorf("errorの件数 = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.apiCallDuration); n != 1 {
		t.Errorf("histogram系列数 = %d, want 1", n)
	}
}

// TestHandler は /metrics の出力を検証する。
func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAPICall(http.MethodPost, http.StatusCreated, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `portal_api_calls_total{method="POST",status="201"} 1`) {
		t.Errorf("API呼び出しのメトリクスが出力されていない")
	}
}
