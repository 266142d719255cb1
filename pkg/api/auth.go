package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/httpclient"
	"github.com/nao1215/civicportal/pkg/session"
)

// AuthAPI は認証エンドポイント。session.Authenticatorを満たす。
type AuthAPI struct {
	hc *httpclient.Client
}

var _ session.Authenticator = (*AuthAPI)(nil)

// Login はPOST /auth/login を呼び出す。
func (a *AuthAPI) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	var creds session.Credentials
	err := a.hc.PostJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &creds)
	return creds, err
}

// Signup はPOST /auth/signup を呼び出す。
func (a *AuthAPI) Signup(ctx context.Context, name, email, password string, role access.Role) (session.Credentials, error) {
	var creds session.Credentials
	err := a.hc.PostJSON(ctx, "/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	}, &creds)
	return creds, err
}

// Logout はPOST /auth/logout を呼び出す。
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.hc.PostJSON(ctx, "/auth/logout", nil, nil)
}
