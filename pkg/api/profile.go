package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// ProfileAPI は自分のアカウントに関するエンドポイント。
type ProfileAPI struct {
	hc *httpclient.Client
}

// ProfileUpdate はプロフィール更新の内容。空の項目は送信しない。
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// Get はGET /users/profile を呼び出す。
func (p *ProfileAPI) Get(ctx context.Context) (User, error) {
	var u User
	err := p.hc.GetJSON(ctx, "/users/profile", nil, &u)
	return u, err
}

// Update はPUT /users/profile を呼び出す。
func (p *ProfileAPI) Update(ctx context.Context, in ProfileUpdate) (User, error) {
	var u User
	err := p.hc.PutJSON(ctx, "/users/profile", in, &u)
	return u, err
}

// Deactivate はPUT /users/deactivate を呼び出す。
func (p *ProfileAPI) Deactivate(ctx context.Context) (Message, error) {
	var m Message
	err := p.hc.PutJSON(ctx, "/users/deactivate", nil, &m)
	return m, err
}
