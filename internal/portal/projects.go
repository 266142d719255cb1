package portal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/civicportal/pkg/api"
	"github.com/nao1215/civicportal/pkg/httpclient"
)

// projectForm はプロジェクト作成・編集フォームの入力。
type projectForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Department  string `form:"department"`
	Location    string `form:"location"`
}

func (f projectForm) input() api.ProjectInput {
	return api.ProjectInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Department:  strings.TrimSpace(f.Department),
		Location:    strings.TrimSpace(f.Location),
	}
}

// issueForm は課題起票フォームの入力。
type issueForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Category    string `form:"category"`
	Priority    string `form:"priority"`
}

// handleListProjects はプロジェクト一覧のハンドラを返す。
// 絞り込みはAPIに渡し、qによる検索は取得後に行う。
func (s *Server) handleListProjects() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := api.ProjectFilters{
			Department: c.Query("department"),
			Status:     c.Query("status"),
			Location:   c.Query("location"),
		}
		projects, err := s.api.Projects.List(c.Request.Context(), filters)
		if err != nil {
			s.fail(c, err)
			return
		}
		q := c.Query("q")
		s.render(c, http.StatusOK, "projects.html", gin.H{
			"Title":    "Projects",
			"Projects": api.SearchProjects(projects, q),
			"Filters":  filters,
			"Query":    q,
		})
	}
}

// handleNewProjectPage はプロジェクト作成画面のハンドラを返す。
func (s *Server) handleNewProjectPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.renderProjectForm(c, http.StatusOK, "", api.ProjectInput{}, "")
	}
}

// renderProjectForm はプロジェクトの作成・編集画面を描画する。projectIDが空なら作成。
func (s *Server) renderProjectForm(c *gin.Context, status int, projectID string, form api.ProjectInput, message string) {
	title := "New project"
	if projectID != "" {
		title = "Edit project"
	}
	data := gin.H{"Title": title, "ProjectID": projectID, "Form": form}
	if message != "" {
		data["Error"] = message
	}
	s.render(c, status, "project_form.html", data)
}

// bindProject はフォームを読み取り、必須項目を検証する。
// 検証に失敗した場合はフォームを422で再表示してok=falseを返す。
func (s *Server) bindProject(c *gin.Context, projectID string) (api.ProjectInput, bool) {
	var form projectForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderProjectForm(c, http.StatusBadRequest, projectID, form.input(), "Invalid form submission.")
		return api.ProjectInput{}, false
	}
	in := form.input()
	if in.Title == "" || in.Description == "" || in.Department == "" {
		s.renderProjectForm(c, http.StatusUnprocessableEntity, projectID, in, "Title, description, and department are required.")
		return api.ProjectInput{}, false
	}
	return in, true
}

// handleCreateProject はプロジェクト作成のハンドラを返す。
func (s *Server) handleCreateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := s.bindProject(c, "")
		if !ok {
			return
		}
		project, err := s.api.Projects.Create(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(project.ID), "created")
	}
}

// handleEditProjectPage はプロジェクト編集画面のハンドラを返す。
func (s *Server) handleEditProjectPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		project, err := s.api.Projects.Get(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.renderProjectForm(c, http.StatusOK, id, api.ProjectInput{
			Title:       project.Title,
			Description: project.Description,
			Department:  project.Department,
			Location:    project.Location,
		}, "")
	}
}

// handleUpdateProject はプロジェクト更新のハンドラを返す。
func (s *Server) handleUpdateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		in, ok := s.bindProject(c, id)
		if !ok {
			return
		}
		if _, err := s.api.Projects.Update(c.Request.Context(), id, in); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "updated")
	}
}

// handleProjectStatus はプロジェクトのステータス更新のハンドラを返す。
func (s *Server) handleProjectStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		status := api.ProjectStatus(c.PostForm("status"))
		if !status.Valid() {
			s.invalid(c, "Please choose a valid project status.")
			return
		}
		if _, err := s.api.Projects.UpdateStatus(c.Request.Context(), id, status); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "updated")
	}
}

// handleProjectProgress はプロジェクトの進捗更新のハンドラを返す。
func (s *Server) handleProjectProgress() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		progress, err := strconv.Atoi(strings.TrimSpace(c.PostForm("progress")))
		if err != nil || progress < 0 || progress > 100 {
			s.invalid(c, "Progress must be a whole number between 0 and 100.")
			return
		}
		notes := strings.TrimSpace(c.PostForm("notes"))
		if _, err := s.api.Projects.UpdateProgress(c.Request.Context(), id, progress, notes); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "updated")
	}
}

// handleArchiveProject はプロジェクトのアーカイブのハンドラを返す。
func (s *Server) handleArchiveProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := s.api.Projects.Archive(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "archived")
	}
}

// projectPage はプロジェクト詳細画面に表示する内容。
type projectPage struct {
	project  api.Project
	budget   *api.Budget
	comments []api.Comment
	issues   []api.Issue
}

// loadProjectPage はプロジェクト、予算、コメント、課題を並行して取得する。
// 予算が未登録（404）の場合はbudgetをnilとする。
func (s *Server) loadProjectPage(ctx context.Context, id string) (projectPage, error) {
	var page projectPage
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.api.Projects.Get(ctx, id)
		page.project = p
		return err
	})
	g.Go(func() error {
		b, err := s.api.Budgets.GetHistory(ctx, id)
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		page.budget = &b
		return nil
	})
	g.Go(func() error {
		cs, err := s.api.Comments.ListByProject(ctx, id)
		page.comments = cs
		return err
	})
	g.Go(func() error {
		is, err := s.api.Issues.List(ctx, api.IssueFilters{Project: id})
		page.issues = is
		return err
	})
	if err := g.Wait(); err != nil {
		return projectPage{}, err
	}
	return page, nil
}

// renderProjectDetail はプロジェクト詳細画面を取得して描画する。
// 課題起票フォームの検証エラー時は入力とメッセージを添えて再表示する。
func (s *Server) renderProjectDetail(c *gin.Context, status int, id string, form issueForm, message string) {
	page, err := s.loadProjectPage(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	data := gin.H{
		"Title":     page.project.Title,
		"Project":   page.project,
		"Budget":    page.budget,
		"Comments":  page.comments,
		"Issues":    page.issues,
		"IssueForm": form,
	}
	if message != "" {
		data["Error"] = message
	}
	s.render(c, status, "project_detail.html", data)
}

// handleProjectDetail はプロジェクト詳細のハンドラを返す。
func (s *Server) handleProjectDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.renderProjectDetail(c, http.StatusOK, c.Param("id"), issueForm{}, "")
	}
}

// parseAmount は金額の入力を読み取る。空の場合はnilを返す。
func parseAmount(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, errors.New("金額が負の値です")
	}
	return &v, nil
}

// handleSaveBudget は予算の登録・更新のハンドラを返す。
// 予算が未登録の場合は配分額を必須として新規登録する。
func (s *Server) handleSaveBudget() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		allocated, err := parseAmount(c.PostForm("allocatedAmount"))
		if err != nil {
			s.invalid(c, "Allocated amount must be a non-negative number.")
			return
		}
		spent, err := parseAmount(c.PostForm("spentAmount"))
		if err != nil {
			s.invalid(c, "Spent amount must be a non-negative number.")
			return
		}

		ctx := c.Request.Context()
		if c.PostForm("exists") == "" {
			if allocated == nil {
				s.invalid(c, "Allocated amount is required.")
				return
			}
			_, err = s.api.Budgets.Create(ctx, id, *allocated)
		} else {
			if allocated == nil && spent == nil {
				s.invalid(c, "Enter an allocated or spent amount to update.")
				return
			}
			_, err = s.api.Budgets.Update(ctx, id, api.BudgetUpdate{
				AllocatedAmount: allocated,
				SpentAmount:     spent,
				Notes:           strings.TrimSpace(c.PostForm("notes")),
			})
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "updated")
	}
}

// commentContent はコメント本文を読み取る。空の場合は422を描画してok=falseを返す。
func (s *Server) commentContent(c *gin.Context) (string, bool) {
	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		s.invalid(c, "Comment cannot be empty.")
		return "", false
	}
	return content, true
}

// handleCreateComment はコメント投稿のハンドラを返す。
func (s *Server) handleCreateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		content, ok := s.commentContent(c)
		if !ok {
			return
		}
		if _, err := s.api.Comments.Create(c.Request.Context(), id, content); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(id), "commented")
	}
}

// handleUpdateComment はコメント編集のハンドラを返す。
func (s *Server) handleUpdateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		content, ok := s.commentContent(c)
		if !ok {
			return
		}
		if _, err := s.api.Comments.Update(c.Request.Context(), c.Param("commentID"), content); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(c.Param("id")), "updated")
	}
}

// handleDeleteComment は自分のコメント削除のハンドラを返す。
func (s *Server) handleDeleteComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.api.Comments.Delete(c.Request.Context(), c.Param("commentID")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, projectPath(c.Param("id")), "deleted")
	}
}

// handleCreateIssue は課題起票のハンドラを返す。
// 検証に失敗した場合はプロジェクト詳細を422で再表示する。
func (s *Server) handleCreateIssue() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var form issueForm
		if err := c.ShouldBind(&form); err != nil {
			s.invalid(c, "Invalid form submission.")
			return
		}
		in := api.IssueInput{
			Title:       strings.TrimSpace(form.Title),
			Description: strings.TrimSpace(form.Description),
			Category:    strings.TrimSpace(form.Category),
			Priority:    api.Priority(form.Priority),
		}
		if in.Title == "" || in.Description == "" || in.Category == "" {
			s.renderProjectDetail(c, http.StatusUnprocessableEntity, id, form, "Title, description, and category are required.")
			return
		}
		if in.Priority != "" && !in.Priority.Valid() {
			s.renderProjectDetail(c, http.StatusUnprocessableEntity, id, form, "Please choose a valid priority.")
			return
		}

		issue, err := s.api.Issues.Create(c.Request.Context(), id, in)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, issuePath(issue.ID), "reported")
	}
}
