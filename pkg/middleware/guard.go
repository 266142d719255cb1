package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/civicportal/pkg/access"
)

// StateSource はルートガードが参照するセッション状態の提供元。
type StateSource interface {
	AccessState() access.State
}

// View はガードが描画する画面。statusは書き込むべきHTTPステータス。
type View func(c *gin.Context, status int)

// GuardConfig はルートガードの設定。
type GuardConfig struct {
	// Sessions はセッション状態の提供元。
	Sessions StateSource
	// LoginPath は未認証時のリダイレクト先。空なら "/login"。
	LoginPath string
	// Loading はセッション復元中に描画する画面。nilならテキストを返す。
	Loading View
	// Forbidden はロールが許可されていない場合に描画する画面。nilならテキストを返す。
	Forbidden View
}

// loadingRetryAfter は復元中の応答に付与するRetry-Afterの秒数。
const loadingRetryAfter = "1"

// Guard はallowedに含まれるロールのみ通過させるGinミドルウェアを返す。
// allowedが空の場合は認証済みであれば通過させる。
// 判定はリクエストごとにaccess.Decideで行う。
func Guard(cfg GuardConfig, allowed ...access.Role) gin.HandlerFunc {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	loading := cfg.Loading
	if loading == nil {
		loading = func(c *gin.Context, status int) { c.String(status, "Loading...") }
	}
	forbidden := cfg.Forbidden
	if forbidden == nil {
		forbidden = func(c *gin.Context, status int) { c.String(status, "Access Denied") }
	}

	return func(c *gin.Context) {
		switch access.Decide(cfg.Sessions.AccessState(), allowed) {
		case access.OutcomeLoading:
			c.Header("Retry-After", loadingRetryAfter)
			loading(c, http.StatusServiceUnavailable)
			c.Abort()
		case access.OutcomeUnauthenticated:
			c.Redirect(http.StatusFound, LoginURL(loginPath, c.Request))
			c.Abort()
		case access.OutcomeForbidden:
			forbidden(c, http.StatusForbidden)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// LoginURL はサインイン画面のURLを返す。
// GETとHEADの場合は元の場所をfromパラメータとして付与する。
func LoginURL(loginPath string, r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return loginPath
	}
	return loginPath + "?" + url.Values{"from": {r.URL.RequestURI()}}.Encode()
}
