package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultLoginPath は401応答時の遷移先。
const defaultLoginPath = "/login"

// maxErrorBody はエラーメッセージ取得のために読み込むボディの上限。
const maxErrorBody = 64 << 10

// Credentials はクライアントが参照するセッション。
type Credentials interface {
	// Token は現在のトークンを返す。未認証なら空文字列。
	Token() string
	// Expire はセッションを消去する。
	Expire(ctx context.Context)
}

// Navigator は画面遷移を要求する関数。
type Navigator func(ctx context.Context, path string)

// Observer はAPI呼び出しごとにメソッド、ステータス、所要時間を受け取る。
// 通信自体が失敗した場合のステータスは0。
type Observer func(method string, status int, elapsed time.Duration)

// Client はバックエンドAPI用のHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はAPIのベースURL（例: "http://localhost:5000/api"）。
	baseURL string
	// logger は構造化ロガー。
	logger *zap.Logger
	// navigator は401応答時に遷移を要求する関数。
	navigator Navigator
	// loginPath は401応答時の遷移先。
	loginPath string
	// observer は呼び出し結果の通知先。nilなら通知しない。
	observer Observer

	mu    sync.RWMutex
	creds Credentials
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger はロガーを設定する。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithNavigator は401応答時の遷移要求先を設定する。
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.navigator = nav }
}

// WithLoginPath は401応答時の遷移先を変更する。
func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

// WithObserver は呼び出し結果の通知先を設定する。
func WithObserver(obs Observer) Option {
	return func(c *Client) { c.observer = obs }
}

// New は新しいAPIクライアントを生成する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    zap.NewNop(),
		navigator: func(context.Context, string) {},
		loginPath: defaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind は参照するセッションを設定する。
// セッションストア自体がこのクライアントを使って認証するため、生成後に結び付ける。
func (c *Client) Bind(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

func (c *Client) credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// Request は1回のAPI呼び出しの内容。
type Request struct {
	// Method はHTTPメソッド。空ならGET。
	Method string
	// Path はベースURLからの相対パス（例: "/projects"）。
	Path string
	// Query はクエリパラメータ。空なら付与しない。
	Query url.Values
	// Body はJSONにシリアライズして送信する値。nilならボディなし。
	Body any
	// Header は追加のヘッダー。既定のヘッダーを上書きできる。
	Header http.Header
}

// GetJSON は指定パスにGETリクエストを送信し、レスポンスをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, result)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// PutJSON は指定パスにJSONボディでPUTリクエストを送信する。
func (c *Client) PutJSON(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, result)
}

// DeleteJSON は指定パスにDELETEリクエストを送信する。
func (c *Client) DeleteJSON(ctx context.Context, path string, result any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, result)
}

// Do はAPIを呼び出す共通処理。
//
// 401応答ではセッションを消去し、サインイン画面への遷移を1回要求して
// ErrSessionExpiredを返す。このときボディは読まない。
// それ以外の2xx以外の応答は*RequestErrorを返す。
// 2xx応答のボディはresultにデシリアライズする（空ボディは許容する）。
func (c *Client) Do(ctx context.Context, r Request, result any) error {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	requestID, ok := RequestIDFrom(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	creds := c.credentials()
	if creds != nil {
		if token := creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", r.Path))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, time.Since(start))
		logger.Warn("API呼び出しに失敗しました", zap.Error(err))
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()
	c.observe(method, resp.StatusCode, time.Since(start))
	logger.Debug("API呼び出し", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Warn("セッションが失効しました")
		if creds != nil {
			creds.Expire(ctx)
		}
		c.navigator(ctx, c.loginPath)
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み込みに失敗: %w", err)
	}
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return nil
}

// errorMessage は失敗応答のボディからmessageを取り出す。
// 取り出せない場合はステータスを含む汎用メッセージを返す。
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Message) == "" {
		return fallbackMessage(resp.StatusCode)
	}
	return body.Message
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(method, status, elapsed)
	}
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 画面へのリクエストとAPI呼び出しのログを対応付けるために使用する。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFrom はコンテキストのリクエストIDを返す。
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyRequestID).(string)
	return id, ok && id != ""
}
