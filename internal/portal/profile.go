package portal

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/civicportal/pkg/api"
)

// handleProfilePage はプロフィール画面のハンドラを返す。
func (s *Server) handleProfilePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.api.Profile.Get(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		s.render(c, http.StatusOK, "profile.html", gin.H{
			"Title":   "My profile",
			"Profile": user,
			"Name":    user.Name,
		})
	}
}

// handleUpdateProfile は表示名更新のハンドラを返す。
func (s *Server) handleUpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			s.invalid(c, "Name cannot be empty.")
			return
		}
		if _, err := s.api.Profile.Update(c.Request.Context(), api.ProfileUpdate{Name: name}); err != nil {
			s.fail(c, err)
			return
		}
		done(c, "/profile", "updated")
	}
}

// handleChangePassword はパスワード変更のハンドラを返す。
// 規則に違反する場合はAPIを呼び出さずに422を返す。
func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		password := c.PostForm("password")
		if msg := validatePassword(password, c.PostForm("confirm")); msg != "" {
			s.invalid(c, msg)
			return
		}
		if _, err := s.api.Profile.Update(c.Request.Context(), api.ProfileUpdate{Password: password}); err != nil {
			s.fail(c, err)
			return
		}
		done(c, "/profile", "password")
	}
}

// handleDeactivate はアカウント無効化のハンドラを返す。
// 無効化に成功したらサインアウトする。
func (s *Server) handleDeactivate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, err := s.api.Profile.Deactivate(ctx); err != nil {
			s.fail(c, err)
			return
		}
		s.store.Logout(ctx)
		done(c, "/", "deactivated")
	}
}
