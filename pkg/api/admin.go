package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/httpclient"
)

// AdminAPI は管理者向けエンドポイント。
type AdminAPI struct {
	hc *httpclient.Client
}

func adminUserPath(id string) string {
	return "/admin/users/" + seg(id)
}

// ListUsers はGET /admin/users を呼び出す。
func (a *AdminAPI) ListUsers(ctx context.Context, f UserFilters) ([]User, error) {
	var out []User
	err := a.hc.GetJSON(ctx, "/admin/users", f.Values(), &out)
	return out, err
}

// GetUser はGET /admin/users/:id を呼び出す。
func (a *AdminAPI) GetUser(ctx context.Context, id string) (User, error) {
	var out User
	err := a.hc.GetJSON(ctx, adminUserPath(id), nil, &out)
	return out, err
}

// AssignRole はPUT /admin/users/:id/role を呼び出す。
func (a *AdminAPI) AssignRole(ctx context.Context, id string, role access.Role) (User, error) {
	var out User
	err := a.hc.PutJSON(ctx, adminUserPath(id)+"/role", map[string]access.Role{"role": role}, &out)
	return out, err
}

// Block はPUT /admin/users/:id/block を呼び出す。
func (a *AdminAPI) Block(ctx context.Context, id string) (User, error) {
	return a.userAction(ctx, id, "block")
}

// Unblock はPUT /admin/users/:id/unblock を呼び出す。
func (a *AdminAPI) Unblock(ctx context.Context, id string) (User, error) {
	return a.userAction(ctx, id, "unblock")
}

// DeactivateUser はPUT /admin/users/:id/deactivate を呼び出す。
func (a *AdminAPI) DeactivateUser(ctx context.Context, id string) (User, error) {
	return a.userAction(ctx, id, "deactivate")
}

// ReactivateUser はPUT /admin/users/:id/reactivate を呼び出す。
func (a *AdminAPI) ReactivateUser(ctx context.Context, id string) (User, error) {
	return a.userAction(ctx, id, "reactivate")
}

func (a *AdminAPI) userAction(ctx context.Context, id, action string) (User, error) {
	var out User
	err := a.hc.PutJSON(ctx, adminUserPath(id)+"/"+action, nil, &out)
	return out, err
}

// DeleteComment はDELETE /admin/comments/:id を呼び出す。
func (a *AdminAPI) DeleteComment(ctx context.Context, id string) (Message, error) {
	var out Message
	err := a.hc.DeleteJSON(ctx, "/admin/comments/"+seg(id), &out)
	return out, err
}

// Stats はGET /admin/stats を呼び出す。
func (a *AdminAPI) Stats(ctx context.Context) (PlatformStats, error) {
	var out PlatformStats
	err := a.hc.GetJSON(ctx, "/admin/stats", nil, &out)
	return out, err
}
