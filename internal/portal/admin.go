package portal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/api"
)

// handleAdminDashboard は管理ダッシュボードのハンドラを返す。
// 集計値とユーザー一覧を並行して取得し、検索とロールの絞り込みは取得後に行う。
func (s *Server) handleAdminDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			stats api.PlatformStats
			users []api.User
		)
		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() error {
			var err error
			stats, err = s.api.Admin.Stats(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			users, err = s.api.Admin.ListUsers(ctx, api.UserFilters{})
			return err
		})
		if err := g.Wait(); err != nil {
			s.fail(c, err)
			return
		}

		q, role := c.Query("q"), c.Query("role")
		s.render(c, http.StatusOK, "admin.html", gin.H{
			"Title": "Admin",
			"Stats": stats,
			"Users": api.SearchUsers(users, q, role),
			"Query": q,
			"Role":  role,
		})
	}
}

// handleAssignRole はロール割り当てのハンドラを返す。
func (s *Server) handleAssignRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := access.ParseRole(c.PostForm("role"))
		if err != nil {
			s.invalid(c, "Please choose a valid role.")
			return
		}
		if _, err := s.api.Admin.AssignRole(c.Request.Context(), c.Param("id"), role); err != nil {
			s.fail(c, err)
			return
		}
		done(c, "/admin", "updated")
	}
}

// handleUserAction はブロックや無効化などユーザーへの操作のハンドラを返す。
func (s *Server) handleUserAction(action func(ctx context.Context, id string) (api.User, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := action(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, "/admin", "updated")
	}
}

// handleModerateComment はコメント削除（モデレーション）のハンドラを返す。
// 削除後はフォームで指定されたプロジェクト、なければ管理画面に戻る。
func (s *Server) handleModerateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.api.Admin.DeleteComment(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		back := "/admin"
		if project := c.PostForm("project"); project != "" {
			back = projectPath(project)
		}
		done(c, back, "deleted")
	}
}
