package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// pendingNavigation はリクエスト処理中に要求された遷移先を保持する。
type pendingNavigation struct {
	mu   sync.Mutex
	path string
}

// set は最初に要求された遷移先だけを保持する。
func (p *pendingNavigation) set(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.path == "" {
		p.path = path
	}
}

func (p *pendingNavigation) get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

type navigationKey struct{}

// ForcedNavigation はハンドラー内で要求された遷移を実行するGinミドルウェアを返す。
// ハンドラーが応答を書き込まなかった場合に限り、303で遷移先へリダイレクトする。
// 同じリクエストで何度要求されてもリダイレクトは1回だけ行う。
func ForcedNavigation() gin.HandlerFunc {
	return func(c *gin.Context) {
		nav := &pendingNavigation{}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), navigationKey{}, nav))

		c.Next()

		path := nav.get()
		if path == "" || c.Writer.Written() {
			return
		}
		c.Redirect(http.StatusSeeOther, path)
	}
}

// Navigate は現在のリクエストの処理後に遷移するよう要求する。
// httpclient.Navigatorとして使用する。ForcedNavigationの外では何もしない。
func Navigate(ctx context.Context, path string) {
	if nav, ok := ctx.Value(navigationKey{}).(*pendingNavigation); ok {
		nav.set(path)
	}
}

// NavigationPending は遷移が要求済みかどうかを返す。
func NavigationPending(ctx context.Context) bool {
	nav, ok := ctx.Value(navigationKey{}).(*pendingNavigation)
	return ok && nav.get() != ""
}
