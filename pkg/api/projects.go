package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// ProjectsAPI はプロジェクトのエンドポイント。
type ProjectsAPI struct {
	hc *httpclient.Client
}

// ProjectInput はプロジェクトの作成・更新内容。
type ProjectInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department,omitempty"`
	Location    string `json:"location,omitempty"`
}

type progressUpdate struct {
	Progress int    `json:"progress"`
	Notes    string `json:"notes,omitempty"`
}

// List はGET /projects を呼び出す。
func (p *ProjectsAPI) List(ctx context.Context, f ProjectFilters) ([]Project, error) {
	var out []Project
	err := p.hc.GetJSON(ctx, "/projects", f.Values(), &out)
	return out, err
}

// Get はGET /projects/:id を呼び出す。
func (p *ProjectsAPI) Get(ctx context.Context, id string) (Project, error) {
	var out Project
	err := p.hc.GetJSON(ctx, "/projects/"+seg(id), nil, &out)
	return out, err
}

// Create はPOST /projects を呼び出す。
func (p *ProjectsAPI) Create(ctx context.Context, in ProjectInput) (Project, error) {
	var out Project
	err := p.hc.PostJSON(ctx, "/projects", in, &out)
	return out, err
}

// Update はPUT /projects/:id を呼び出す。
func (p *ProjectsAPI) Update(ctx context.Context, id string, in ProjectInput) (Project, error) {
	var out Project
	err := p.hc.PutJSON(ctx, "/projects/"+seg(id), in, &out)
	return out, err
}

// UpdateStatus はPUT /projects/:id/status を呼び出す。
func (p *ProjectsAPI) UpdateStatus(ctx context.Context, id string, status ProjectStatus) (Project, error) {
	var out Project
	err := p.hc.PutJSON(ctx, "/projects/"+seg(id)+"/status", map[string]ProjectStatus{"status": status}, &out)
	return out, err
}

// UpdateProgress はPUT /projects/:id/progress を呼び出す。notesは空なら送信しない。
func (p *ProjectsAPI) UpdateProgress(ctx context.Context, id string, progress int, notes string) (Project, error) {
	var out Project
	err := p.hc.PutJSON(ctx, "/projects/"+seg(id)+"/progress", progressUpdate{Progress: progress, Notes: notes}, &out)
	return out, err
}

// Archive はPUT /projects/:id/archive を呼び出す。
func (p *ProjectsAPI) Archive(ctx context.Context, id string) (Project, error) {
	var out Project
	err := p.hc.PutJSON(ctx, "/projects/"+seg(id)+"/archive", nil, &out)
	return out, err
}
