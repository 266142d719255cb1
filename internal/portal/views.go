package portal

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/api"
	"github.com/nao1215/civicportal/pkg/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// notices は操作完了後にnoticeパラメータで表示するメッセージ。
var notices = map[string]string{
	"created":     "Created successfully.",
	"updated":     "Changes saved.",
	"archived":    "Project archived.",
	"commented":   "Comment posted.",
	"deleted":     "Deleted.",
	"reported":    "Issue reported. Officials will review it shortly.",
	"responded":   "Response posted.",
	"escalated":   "Issue escalated.",
	"password":    "Password updated.",
	"signedout":   "You have been signed out.",
	"deactivated": "Your account has been deactivated.",
	"welcome":     "Welcome to the portal.",
}

// templateFuncs はテンプレートから使う関数。
var templateFuncs = template.FuncMap{
	"can": func(user *session.Identity, action string) bool {
		return user != nil && access.Can(user.Role, access.Action(action))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006")
	},
	"money": func(v float64) string {
		return formatAmount(v)
	},
	"label": func(s any) string {
		return strings.ReplaceAll(fmt.Sprint(s), "_", " ")
	},
	"roles":           access.Roles,
	"projectStatuses": api.ProjectStatuses,
	"issueStatuses":   api.IssueStatuses,
	"priorities":      api.Priorities,
	"selfAssignable": func() []access.Role {
		return []access.Role{access.RoleCitizen, access.RoleVolunteer}
	},
}

// parseTemplates は埋め込みテンプレートを読み込む。
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗: %w", err)
	}
	return tmpl, nil
}

// formatAmount は金額を3桁区切りで整形する。
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// render は共通の値を加えて画面を描画する。
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := s.store.Identity(); ok {
		data["User"] = &id
	}
	if _, ok := data["Notice"]; !ok {
		if msg, ok := notices[c.Query("notice")]; ok {
			data["Notice"] = msg
		}
	}
	data["Path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

// renderLoading はセッション復元中の画面を描画する。
func (s *Server) renderLoading(c *gin.Context, status int) {
	c.HTML(status, "loading.html", gin.H{"Title": "Loading"})
}

// renderForbidden はアクセス拒否の画面を描画する。
func (s *Server) renderForbidden(c *gin.Context, status int) {
	s.render(c, status, "denied.html", gin.H{"Title": "Access Denied"})
}

// renderError はエラー画面を描画する。
func (s *Server) renderError(c *gin.Context, status int, message string) {
	s.render(c, status, "error.html", gin.H{"Title": "Error", "Error": message})
}

// renderRateLimited は試行回数の上限に達した場合の画面を描画する。
func (s *Server) renderRateLimited(c *gin.Context, status int) {
	s.renderError(c, status, "Too many attempts. Please wait a moment and try again.")
}
