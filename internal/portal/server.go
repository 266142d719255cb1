package portal

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/civicportal/internal/config"
	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/api"
	"github.com/nao1215/civicportal/pkg/httpclient"
	"github.com/nao1215/civicportal/pkg/metrics"
	"github.com/nao1215/civicportal/pkg/middleware"
	"github.com/nao1215/civicportal/pkg/session"
)

// Server はポータルのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store はプロセス内で唯一のセッションストア。
	store *session.Store
	// api はバックエンドAPIのクライアント。
	api *api.Client
	// metrics はPrometheusメトリクス。
	metrics *metrics.Metrics
	// logger は構造化ロガー。
	logger *zap.Logger
	// cfg はポータルの設定。
	cfg config.Config
}

// NewServer は新しいポータルサーバーを生成する。
// clientはstoreにBind済みであること。
func NewServer(cfg config.Config, store *session.Store, client *api.Client, m *metrics.Metrics, logger *zap.Logger) (*Server, error) {
	if store == nil || client == nil || m == nil {
		return nil, errors.New("セッションストア、APIクライアント、メトリクスは必須です")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(m.Middleware())
	router.Use(middleware.ForcedNavigation())

	s := &Server{
		router:  router,
		store:   store,
		api:     client,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// guard はactionを実行できるロールだけを通すルートガードを返す。
func (s *Server) guard(action access.Action) gin.HandlerFunc {
	return middleware.Guard(middleware.GuardConfig{
		Sessions:  s.store,
		Loading:   s.renderLoading,
		Forbidden: s.renderForbidden,
	}, access.RolesFor(action)...)
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleLanding())

	// 認証（ガードなし）
	loginLimit := middleware.RateLimit(s.cfg.LoginRatePerMinute, s.cfg.LoginBurst, s.renderRateLimited)
	signupLimit := middleware.RateLimit(s.cfg.LoginRatePerMinute, s.cfg.LoginBurst, s.renderRateLimited)
	s.router.GET("/login", s.handleLoginPage())
	s.router.POST("/login", loginLimit, s.handleLogin())
	s.router.GET("/signup", s.handleSignupPage())
	s.router.POST("/signup", signupLimit, s.handleSignup())
	s.router.POST("/logout", s.handleLogout())

	// プロジェクト
	s.router.GET("/projects", s.handleListProjects())
	s.router.GET("/projects/new", s.guard(access.ActionCreateProject), s.handleNewProjectPage())
	s.router.POST("/projects", s.guard(access.ActionCreateProject), s.handleCreateProject())
	s.router.GET("/projects/:id", s.handleProjectDetail())
	s.router.GET("/projects/:id/edit", s.guard(access.ActionEditProject), s.handleEditProjectPage())
	s.router.POST("/projects/:id", s.guard(access.ActionEditProject), s.handleUpdateProject())
	s.router.POST("/projects/:id/status", s.guard(access.ActionEditProject), s.handleProjectStatus())
	s.router.POST("/projects/:id/progress", s.guard(access.ActionEditProject), s.handleProjectProgress())
	s.router.POST("/projects/:id/archive", s.guard(access.ActionArchiveProject), s.handleArchiveProject())
	s.router.POST("/projects/:id/budget", s.guard(access.ActionManageBudget), s.handleSaveBudget())
	s.router.POST("/projects/:id/comments", s.guard(access.ActionComment), s.handleCreateComment())
	s.router.POST("/projects/:id/comments/:commentID", s.guard(access.ActionComment), s.handleUpdateComment())
	s.router.POST("/projects/:id/comments/:commentID/delete", s.guard(access.ActionComment), s.handleDeleteComment())
	s.router.POST("/projects/:id/issues", s.guard(access.ActionRaiseIssue), s.handleCreateIssue())

	// 課題
	s.router.GET("/issues", s.handleListIssues())
	s.router.GET("/issues/:id", s.handleIssueDetail())
	s.router.POST("/issues/:id/status", s.guard(access.ActionRespondIssue), s.handleIssueStatus())
	s.router.POST("/issues/:id/respond", s.guard(access.ActionRespondIssue), s.handleRespondIssue())
	s.router.POST("/issues/:id/escalate", s.guard(access.ActionEscalateIssue), s.handleEscalateIssue())

	// プロフィール
	profile := s.router.Group("/profile", s.guard(access.ActionManageProfile))
	{
		profile.GET("", s.handleProfilePage())
		profile.POST("", s.handleUpdateProfile())
		profile.POST("/password", s.handleChangePassword())
		profile.POST("/deactivate", s.handleDeactivate())
	}

	// 管理
	s.router.GET("/admin", s.guard(access.ActionAdminDashboard), s.handleAdminDashboard())
	users := s.router.Group("/admin/users/:id", s.guard(access.ActionManageUsers))
	{
		users.POST("/role", s.handleAssignRole())
		users.POST("/block", s.handleUserAction(s.api.Admin.Block))
		users.POST("/unblock", s.handleUserAction(s.api.Admin.Unblock))
		users.POST("/deactivate", s.handleUserAction(s.api.Admin.DeactivateUser))
		users.POST("/reactivate", s.handleUserAction(s.api.Admin.ReactivateUser))
	}
	s.router.POST("/admin/comments/:id/delete", s.guard(access.ActionModerateComments), s.handleModerateComment())

	// 運用
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "portal"})
	})
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	sess := s.router.Group("/session", middleware.CORS(s.cfg.AllowedOrigins))
	{
		sess.GET("", s.handleSessionStatus())
		sess.OPTIONS("", func(*gin.Context) {})
	}
}

// handleLanding はトップページのハンドラを返す。
func (s *Server) handleLanding() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		projects, err := s.api.Projects.List(ctx, api.ProjectFilters{})
		if err != nil {
			if middleware.NavigationPending(ctx) {
				return
			}
			// 一覧を取得できなくてもページは表示する
			s.logger.Warn("トップページのプロジェクト取得に失敗しました", zap.Error(err))
		}
		if len(projects) > landingProjects {
			projects = projects[:landingProjects]
		}
		s.render(c, http.StatusOK, "landing.html", gin.H{"Projects": projects})
	}
}

// landingProjects はトップページに表示するプロジェクト数。
const landingProjects = 3

// handleSessionStatus は現在のセッション状態をJSONで返すハンドラを返す。
func (s *Server) handleSessionStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.store.AccessState()
		body := gin.H{"loading": state.Loading, "authenticated": state.Authenticated}
		if id, ok := s.store.Identity(); ok {
			body["user"] = id
		}
		c.JSON(http.StatusOK, body)
	}
}

// unreachableMessage は通信失敗時に表示するメッセージ。
const unreachableMessage = "Unable to reach the server. Please try again later."

// apiFailure はAPIエラーを表示用のステータスとメッセージに変換する。
// セッション期限切れの場合はok=falseを返す。その場合ゲートウェイが
// セッションを消去して遷移を要求済みなので、呼び出し元は何も描画しない。
func apiFailure(err error) (status int, message string, ok bool) {
	if errors.Is(err, httpclient.ErrSessionExpired) {
		return 0, "", false
	}
	var reqErr *httpclient.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode, reqErr.Message, true
	}
	return http.StatusBadGateway, unreachableMessage, true
}

// fail はAPIエラーをエラー画面として描画する。
// 並行した呼び出しのいずれかでセッションが失効していれば、
// errが別の失敗であっても何も描画せず遷移を優先する。
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if middleware.NavigationPending(c.Request.Context()) {
		return
	}
	status, message, ok := apiFailure(err)
	if !ok {
		return
	}
	s.renderError(c, status, message)
}

// done は操作完了後に通知付きでpathへリダイレクトする。
func done(c *gin.Context, path, notice string) {
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s?notice=%s", path, notice))
}

// invalid は入力検証エラーを422で描画する。
func (s *Server) invalid(c *gin.Context, message string) {
	s.renderError(c, http.StatusUnprocessableEntity, message)
}

// localPath はfromがこのポータル内のパスであればそのまま返し、
// それ以外は既定の遷移先を返す。
func localPath(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return defaultLanding
	}
	return from
}

// defaultLanding はサインイン後の既定の遷移先。
const defaultLanding = "/projects"

// projectPath はプロジェクト詳細のパスを返す。
func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

// issuePath は課題詳細のパスを返す。
func issuePath(id string) string {
	return "/issues/" + url.PathEscape(id)
}
