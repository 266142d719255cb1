package portal

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/civicportal/pkg/api"
)

// handleListIssues は課題一覧のハンドラを返す。
func (s *Server) handleListIssues() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := api.IssueFilters{
			Project:  c.Query("project"),
			Status:   c.Query("status"),
			Category: c.Query("category"),
			Priority: c.Query("priority"),
		}
		issues, err := s.api.Issues.List(c.Request.Context(), filters)
		if err != nil {
			s.fail(c, err)
			return
		}
		q := c.Query("q")
		s.render(c, http.StatusOK, "issues.html", gin.H{
			"Title":   "Issues",
			"Issues":  api.SearchIssues(issues, q),
			"Filters": filters,
			"Query":   q,
		})
	}
}

// handleIssueDetail は課題詳細のハンドラを返す。
func (s *Server) handleIssueDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		issue, err := s.api.Issues.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		s.render(c, http.StatusOK, "issue_detail.html", gin.H{"Title": issue.Title, "Issue": issue})
	}
}

// handleIssueStatus は課題のステータス更新のハンドラを返す。
func (s *Server) handleIssueStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		status := api.IssueStatus(c.PostForm("status"))
		if !status.Valid() {
			s.invalid(c, "Please choose a valid issue status.")
			return
		}
		if _, err := s.api.Issues.UpdateStatus(c.Request.Context(), id, status); err != nil {
			s.fail(c, err)
			return
		}
		done(c, issuePath(id), "updated")
	}
}

// handleRespondIssue は課題への回答のハンドラを返す。
func (s *Server) handleRespondIssue() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		response := strings.TrimSpace(c.PostForm("response"))
		if response == "" {
			s.invalid(c, "Response cannot be empty.")
			return
		}
		if _, err := s.api.Issues.Respond(c.Request.Context(), id, response); err != nil {
			s.fail(c, err)
			return
		}
		done(c, issuePath(id), "responded")
	}
}

// handleEscalateIssue は課題のエスカレーションのハンドラを返す。
func (s *Server) handleEscalateIssue() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		to := strings.TrimSpace(c.PostForm("escalatedTo"))
		if to == "" {
			s.invalid(c, "Choose who the issue should be escalated to.")
			return
		}
		if _, err := s.api.Issues.Escalate(c.Request.Context(), id, to); err != nil {
			s.fail(c, err)
			return
		}
		done(c, issuePath(id), "escalated")
	}
}
