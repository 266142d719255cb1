package portal

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/middleware"
	"github.com/nao1215/civicportal/pkg/session"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// loginForm はサインインフォームの入力。
type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	From     string `form:"from"`
}

// signupForm はサインアップフォームの入力。
type signupForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Confirm  string `form:"confirm"`
	Role     string `form:"role"`
	Terms    string `form:"terms"`
}

// validatePassword はパスワードの規則を検証し、違反していればメッセージを返す。
func validatePassword(password, confirm string) string {
	if len(password) < minPasswordLength {
		return "Password must be at least 6 characters long."
	}
	if password != confirm {
		return "Passwords do not match."
	}
	return ""
}

// handleLoginPage はサインイン画面のハンドラを返す。
// 認証済みの場合はfromまたは既定の遷移先へリダイレクトする。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		if s.store.IsAuthenticated() {
			c.Redirect(http.StatusSeeOther, localPath(from))
			return
		}
		s.renderLogin(c, http.StatusOK, loginForm{From: from}, "")
	}
}

// renderLogin はサインイン画面を描画する。
func (s *Server) renderLogin(c *gin.Context, status int, form loginForm, message string) {
	data := gin.H{"Title": "Sign in", "Email": form.Email, "From": form.From}
	if message != "" {
		data["Error"] = message
	}
	s.render(c, status, "login.html", data)
}

// handleLogin はサインインのハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form loginForm
		if err := c.ShouldBind(&form); err != nil {
			s.renderLogin(c, http.StatusBadRequest, form, "Invalid form submission.")
			return
		}
		form.Email = strings.TrimSpace(form.Email)
		if form.Email == "" || form.Password == "" {
			s.renderLogin(c, http.StatusUnprocessableEntity, form, "Email and password are required.")
			return
		}

		if err := s.store.Login(c.Request.Context(), form.Email, form.Password); err != nil {
			_ = c.Error(err)
			status, message, ok := apiFailure(err)
			if !ok || middleware.NavigationPending(c.Request.Context()) {
				return
			}
			s.renderLogin(c, status, form, message)
			return
		}
		c.Redirect(http.StatusSeeOther, localPath(form.From))
	}
}

// handleSignupPage はサインアップ画面のハンドラを返す。
func (s *Server) handleSignupPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.store.IsAuthenticated() {
			c.Redirect(http.StatusSeeOther, defaultLanding)
			return
		}
		s.renderSignup(c, http.StatusOK, signupForm{Role: access.RoleCitizen.String()}, "")
	}
}

// renderSignup はサインアップ画面を描画する。パスワードは再表示しない。
func (s *Server) renderSignup(c *gin.Context, status int, form signupForm, message string) {
	form.Password, form.Confirm = "", ""
	data := gin.H{"Title": "Sign up", "Form": form}
	if message != "" {
		data["Error"] = message
	}
	s.render(c, status, "signup.html", data)
}

// handleSignup はサインアップのハンドラを返す。
// 入力検証に失敗した場合はAPIを呼び出さずに422でフォームを再表示する。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form signupForm
		if err := c.ShouldBind(&form); err != nil {
			s.renderSignup(c, http.StatusBadRequest, form, "Invalid form submission.")
			return
		}
		form.Name = strings.TrimSpace(form.Name)
		form.Email = strings.TrimSpace(form.Email)

		if msg := validateSignup(form); msg != "" {
			s.renderSignup(c, http.StatusUnprocessableEntity, form, msg)
			return
		}
		role, err := access.ParseRole(form.Role)
		if err != nil {
			s.renderSignup(c, http.StatusUnprocessableEntity, form, "Please choose a valid role.")
			return
		}

		err = s.store.Signup(c.Request.Context(), form.Name, form.Email, form.Password, role)
		if errors.Is(err, session.ErrRoleNotSelfAssignable) {
			s.renderSignup(c, http.StatusUnprocessableEntity, form, "Only citizen and volunteer accounts can be created here.")
			return
		}
		if err != nil {
			_ = c.Error(err)
			status, message, ok := apiFailure(err)
			if !ok || middleware.NavigationPending(c.Request.Context()) {
				return
			}
			s.renderSignup(c, status, form, message)
			return
		}
		done(c, defaultLanding, "welcome")
	}
}

// validateSignup はサインアップの入力を検証し、違反していればメッセージを返す。
func validateSignup(form signupForm) string {
	if form.Name == "" || form.Email == "" {
		return "Name and email are required."
	}
	if form.Terms != "on" {
		return "Please accept the terms of service to continue."
	}
	return validatePassword(form.Password, form.Confirm)
}

// handleLogout はサインアウトのハンドラを返す。
// リモートのサインアウトが失敗してもローカルのセッションは消去される。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.store.Logout(c.Request.Context())
		done(c, "/", "signedout")
	}
}
