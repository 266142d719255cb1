package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// IssuesAPI は課題のエンドポイント。
type IssuesAPI struct {
	hc *httpclient.Client
}

// IssueInput は課題の作成内容。Priorityは空なら送信しない。
type IssueInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority,omitempty"`
}

// List はGET /issues を呼び出す。
func (i *IssuesAPI) List(ctx context.Context, f IssueFilters) ([]Issue, error) {
	var out []Issue
	err := i.hc.GetJSON(ctx, "/issues", f.Values(), &out)
	return out, err
}

// Get はGET /issues/:id を呼び出す。
func (i *IssuesAPI) Get(ctx context.Context, id string) (Issue, error) {
	var out Issue
	err := i.hc.GetJSON(ctx, "/issues/"+seg(id), nil, &out)
	return out, err
}

// Create はPOST /issues/project/:id を呼び出す。
func (i *IssuesAPI) Create(ctx context.Context, projectID string, in IssueInput) (Issue, error) {
	var out Issue
	err := i.hc.PostJSON(ctx, "/issues/project/"+seg(projectID), in, &out)
	return out, err
}

// UpdateStatus はPUT /issues/:id/status を呼び出す。
func (i *IssuesAPI) UpdateStatus(ctx context.Context, id string, status IssueStatus) (Issue, error) {
	var out Issue
	err := i.hc.PutJSON(ctx, "/issues/"+seg(id)+"/status", map[string]IssueStatus{"status": status}, &out)
	return out, err
}

// Respond はPOST /issues/:id/respond を呼び出す。
func (i *IssuesAPI) Respond(ctx context.Context, id, response string) (Issue, error) {
	var out Issue
	err := i.hc.PostJSON(ctx, "/issues/"+seg(id)+"/respond", map[string]string{"response": response}, &out)
	return out, err
}

// Escalate はPOST /issues/:id/escalate を呼び出す。
func (i *IssuesAPI) Escalate(ctx context.Context, id, escalatedTo string) (Issue, error) {
	var out Issue
	err := i.hc.PostJSON(ctx, "/issues/"+seg(id)+"/escalate", map[string]string{"escalatedTo": escalatedTo}, &out)
	return out, err
}
