package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/civicportal/pkg/access"
	"github.com/nao1215/civicportal/pkg/httpclient"
	"github.com/nao1215/civicportal/pkg/session"
)

// recordedCall はテストサーバーが受け取ったリクエスト。
type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// recorder は受け取ったリクエストを記録し、固定の応答を返すテストサーバー。
type recorder struct {
	mu    sync.Mutex
	calls []recordedCall
	// respond は応答ボディ。
	respond string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	raw, _ := io.ReadAll(req.Body)
	call := recordedCall{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(r.respond))
}

func (r *recorder) last(t *testing.T) recordedCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("リクエストが送信されていない")
	}
	return r.calls[len(r.calls)-1]
}

// newTestAPI はテストサーバーに接続したClientを生成する。
func newTestAPI(t *testing.T, respond string) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{respond: respond}
	ts := httptest.NewServer(rec)
	t.Cleanup(ts.Close)
	return New(httpclient.New(ts.URL + "/api")), rec
}

// TestEndpoints は各操作のメソッド、パス、ボディを検証する。
func TestEndpoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	allocated := 5000.0
	active := false

	tests := []struct {
		name     string
		respond  string
		call     func(c *Client) error
		wantCall recordedCall
	}{
		{
			name: "Login",
			call: func(c *Client) error { _, err := c.Auth.Login(ctx, "a@x.com", "secret"); return err },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/auth/login",
				Body: map[string]any{"email": "a@x.com", "password": "secret"}},
		},
		{
			name: "Signup",
			call: func(c *Client) error {
				_, err := c.Auth.Signup(ctx, "A", "a@x.com", "secret", access.RoleVolunteer)
				return err
			},
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/auth/signup",
				Body: map[string]any{"name": "A", "email": "a@x.com", "password": "secret", "role": "volunteer"}},
		},
		{
			name:     "Logout",
			call:     func(c *Client) error { return c.Auth.Logout(ctx) },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/auth/logout"},
		},
		{
			name:     "プロフィール取得",
			call:     func(c *Client) error { _, err := c.Profile.Get(ctx); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/users/profile"},
		},
		{
			name: "プロフィール更新は空の項目を送らないこと",
			call: func(c *Client) error {
				_, err := c.Profile.Update(ctx, ProfileUpdate{Password: "newpass"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/users/profile",
				Body: map[string]any{"password": "newpass"}},
		},
		{
			name:     "アカウント無効化",
			call:     func(c *Client) error { _, err := c.Profile.Deactivate(ctx); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/users/deactivate"},
		},
		{
			name:    "プロジェクト一覧は空のフィルタを送らないこと",
			respond: `[]`,
			call:    func(c *Client) error {
				_, err := c.Projects.List(ctx, ProjectFilters{Status: "ongoing"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/projects", Query: "status=ongoing"},
		},
		{
			name:     "プロジェクト取得",
			call:     func(c *Client) error { _, err := c.Projects.Get(ctx, "p1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/projects/p1"},
		},
		{
			name: "プロジェクト作成",
			call: func(c *Client) error {
				_, err := c.Projects.Create(ctx, ProjectInput{Title: "Road", Description: "d", Department: "PWD"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/projects",
				Body: map[string]any{"title": "Road", "description": "d", "department": "PWD"}},
		},
		{
			name: "プロジェクト更新",
			call: func(c *Client) error {
				_, err := c.Projects.Update(ctx, "p1", ProjectInput{Location: "Pune"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/projects/p1",
				Body: map[string]any{"location": "Pune"}},
		},
		{
			name: "プロジェクト状況更新",
			call: func(c *Client) error {
				_, err := c.Projects.UpdateStatus(ctx, "p1", ProjectStalled)
				return err
			},
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/projects/p1/status",
				Body: map[string]any{"status": "stalled"}},
		},
		{
			name: "進捗更新でnotesが空なら送らないこと",
			call: func(c *Client) error {
				_, err := c.Projects.UpdateProgress(ctx, "p1", 40, "")
				return err
			},
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/projects/p1/progress",
				Body: map[string]any{"progress": float64(40)}},
		},
		{
			name:     "プロジェクトのアーカイブ",
			call:     func(c *Client) error { _, err := c.Projects.Archive(ctx, "p1"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/projects/p1/archive"},
		},
		{
			name:     "予算取得",
			call:     func(c *Client) error { _, err := c.Budgets.GetByProject(ctx, "p1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/budgets/project/p1"},
		},
		{
			name:     "予算履歴取得",
			call:     func(c *Client) error { _, err := c.Budgets.GetHistory(ctx, "p1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/budgets/project/p1/history"},
		},
		{
			name: "予算作成",
			call: func(c *Client) error { _, err := c.Budgets.Create(ctx, "p1", 1000); return err },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/budgets/project/p1",
				Body: map[string]any{"allocatedAmount": float64(1000)}},
		},
		{
			name: "予算更新",
			call: func(c *Client) error {
				_, err := c.Budgets.Update(ctx, "p1", BudgetUpdate{AllocatedAmount: &allocated, Notes: "revised"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/budgets/project/p1",
				Body: map[string]any{"allocatedAmount": float64(5000), "notes": "revised"}},
		},
		{
			name:     "コメント一覧",
			respond:  `[]`,
			call:     func(c *Client) error { _, err := c.Comments.ListByProject(ctx, "p1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/comments/project/p1"},
		},
		{
			name: "コメント投稿",
			call: func(c *Client) error { _, err := c.Comments.Create(ctx, "p1", "hello"); return err },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/comments/project/p1",
				Body: map[string]any{"content": "hello"}},
		},
		{
			name: "コメント更新",
			call: func(c *Client) error { _, err := c.Comments.Update(ctx, "c1", "edited"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/comments/c1",
				Body: map[string]any{"content": "edited"}},
		},
		{
			name:     "コメント削除",
			call:     func(c *Client) error { _, err := c.Comments.Delete(ctx, "c1"); return err },
			wantCall: recordedCall{Method: http.MethodDelete, Path: "/api/comments/c1"},
		},
		{
			name:    "課題一覧",
			respond: `[]`,
			call:    func(c *Client) error {
				_, err := c.Issues.List(ctx, IssueFilters{Project: "p1", Priority: "high"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/issues", Query: "priority=high&project=p1"},
		},
		{
			name:     "課題取得",
			call:     func(c *Client) error { _, err := c.Issues.Get(ctx, "i1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/issues/i1"},
		},
		{
			name: "課題作成でpriorityが空なら送らないこと",
			call: func(c *Client) error {
				_, err := c.Issues.Create(ctx, "p1", IssueInput{Title: "Pothole", Description: "d", Category: "roads"})
				return err
			},
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/issues/project/p1",
				Body: map[string]any{"title": "Pothole", "description": "d", "category": "roads"}},
		},
		{
			name: "課題状況更新",
			call: func(c *Client) error { _, err := c.Issues.UpdateStatus(ctx, "i1", IssueResolved); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/issues/i1/status",
				Body: map[string]any{"status": "resolved"}},
		},
		{
			name: "課題への回答",
			call: func(c *Client) error { _, err := c.Issues.Respond(ctx, "i1", "fixed"); return err },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/issues/i1/respond",
				Body: map[string]any{"response": "fixed"}},
		},
		{
			name: "課題のエスカレーション",
			call: func(c *Client) error { _, err := c.Issues.Escalate(ctx, "i1", "u9"); return err },
			wantCall: recordedCall{Method: http.MethodPost, Path: "/api/issues/i1/escalate",
				Body: map[string]any{"escalatedTo": "u9"}},
		},
		{
			name:    "ユーザー一覧はfalseを送ること",
			respond: `[]`,
			call:    func(c *Client) error {
				_, err := c.Admin.ListUsers(ctx, UserFilters{IsActive: &active})
				return err
			},
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/admin/users", Query: "isActive=false"},
		},
		{
			name:     "ユーザー取得",
			call:     func(c *Client) error { _, err := c.Admin.GetUser(ctx, "u1"); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/admin/users/u1"},
		},
		{
			name: "ロール付与",
			call: func(c *Client) error { _, err := c.Admin.AssignRole(ctx, "u1", access.RoleOfficial); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/admin/users/u1/role",
				Body: map[string]any{"role": "official"}},
		},
		{
			name:     "ユーザーのブロック",
			call:     func(c *Client) error { _, err := c.Admin.Block(ctx, "u1"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/admin/users/u1/block"},
		},
		{
			name:     "ユーザーのブロック解除",
			call:     func(c *Client) error { _, err := c.Admin.Unblock(ctx, "u1"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/admin/users/u1/unblock"},
		},
		{
			name:     "ユーザーの無効化",
			call:     func(c *Client) error { _, err := c.Admin.DeactivateUser(ctx, "u1"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/admin/users/u1/deactivate"},
		},
		{
			name:     "ユーザーの再有効化",
			call:     func(c *Client) error { _, err := c.Admin.ReactivateUser(ctx, "u1"); return err },
			wantCall: recordedCall{Method: http.MethodPut, Path: "/api/admin/users/u1/reactivate"},
		},
		{
			name:     "コメントのモデレーション",
			call:     func(c *Client) error { _, err := c.Admin.DeleteComment(ctx, "c1"); return err },
			wantCall: recordedCall{Method: http.MethodDelete, Path: "/api/admin/comments/c1"},
		},
		{
			name:     "統計取得",
			call:     func(c *Client) error { _, err := c.Admin.Stats(ctx); return err },
			wantCall: recordedCall{Method: http.MethodGet, Path: "/api/admin/stats"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			respond := tt.respond
			if respond == "" {
				respond = `{}`
			}
			c, rec := newTestAPI(t, respond)
			if err := tt.call(c); err != nil {
				t.Fatalf("呼び出しでエラーが発生: %v", err)
			}
			if diff := cmp.Diff(tt.wantCall, rec.last(t)); diff != "" {
				t.Errorf("リクエスト mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestAuthLoginDecodesCredentials はログイン応答のデコードを検証する。
func TestAuthLoginDecodesCredentials(t *testing.T) {
	t.Parallel()

	c, _ := newTestAPI(t, `{"token":"t1","user":{"id":"1","name":"A","email":"a@x.com","role":"citizen"}}`)

	creds, err := c.Auth.Login(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("Login()でエラーが発生: %v", err)
	}
	want := session.Credentials{
		Token: "t1",
		User:  session.Identity{ID: "1", Name: "A", Email: "a@x.com", Role: access.RoleCitizen},
	}
	if diff := cmp.Diff(want, creds); diff != "" {
		t.Errorf("Credentials mismatch (-want +got):\n%s", diff)
	}
}

// TestProjectsDecode はエンティティのデコードを検証する。
func TestProjectsDecode(t *testing.T) {
	t.Parallel()

	c, _ := newTestAPI(t, `[{
		"_id":"p1","title":"Road","description":"d","department":"PWD","status":"ongoing","progress":40,
		"progressHistory":[{"progress":40,"updatedBy":{"_id":"u1","name":"O","email":"o@gov.in","role":"official"},
			"createdAt":"2024-01-02T03:04:05.000Z","updatedAt":"2024-01-02T03:04:05.000Z"}],
		"createdBy":{"_id":"u1","name":"O","email":"o@gov.in","role":"official"},
		"isArchived":false,"createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-02T03:04:05.000Z"}]`)

	projects, err := c.Projects.List(context.Background(), ProjectFilters{})
	if err != nil {
		t.Fatalf("List()でエラーが発生: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len = %d, want 1", len(projects))
	}
	p := projects[0]
	if p.ID != "p1" || p.Status != ProjectOngoing || p.Progress != 40 {
		t.Errorf("project = %+v", p)
	}
	if len(p.ProgressHistory) != 1 || p.ProgressHistory[0].UpdatedBy.Name != "O" {
		t.Errorf("progressHistory = %+v", p.ProgressHistory)
	}
}

// TestIDEscaping はIDがパスとしてエスケープされることを検証する。
func TestIDEscaping(t *testing.T) {
	t.Parallel()

	var rawPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := New(httpclient.New(ts.URL))
	if _, err := c.Projects.Get(context.Background(), "../admin/stats"); err != nil {
		t.Fatalf("Get()でエラーが発生: %v", err)
	}
	if rawPath != "/projects/..%2Fadmin%2Fstats" {
		t.Errorf("path = %q", rawPath)
	}
}

// TestRequestErrorPropagation は失敗応答がそのまま返ることを検証する。
func TestRequestErrorPropagation(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Email already registered"}`))
	}))
	defer ts.Close()

	c := New(httpclient.New(ts.URL))
	_, err := c.Auth.Signup(context.Background(), "A", "a@x.com", "secret", access.RoleCitizen)
	var reqErr *httpclient.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Message != "Email already registered" {
		t.Errorf("Message = %q", reqErr.Message)
	}
}
