package api

import (
	"net/url"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// Client はリソースごとのAPI呼び出し口をまとめたもの。
type Client struct {
	Auth     *AuthAPI
	Profile  *ProfileAPI
	Projects *ProjectsAPI
	Budgets  *BudgetsAPI
	Comments *CommentsAPI
	Issues   *IssuesAPI
	Admin    *AdminAPI
}

// New は認証付きHTTPクライアントからClientを生成する。
func New(hc *httpclient.Client) *Client {
	return &Client{
		Auth:     &AuthAPI{hc: hc},
		Profile:  &ProfileAPI{hc: hc},
		Projects: &ProjectsAPI{hc: hc},
		Budgets:  &BudgetsAPI{hc: hc},
		Comments: &CommentsAPI{hc: hc},
		Issues:   &IssuesAPI{hc: hc},
		Admin:    &AdminAPI{hc: hc},
	}
}

// seg はパスの1要素としてIDをエスケープする。
func seg(id string) string {
	return url.PathEscape(id)
}
