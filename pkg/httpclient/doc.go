// Package httpclient はバックエンドAPIを呼び出す認証付きHTTPクライアントを提供する。
//
// すべての外部API呼び出しはこのクライアントを経由する。
// 保持中のトークンをBearerヘッダーとして付与し、401応答を受け取った場合は
// セッションを消去してサインイン画面への遷移を1回だけ要求する。
// それ以外の失敗応答はRequestErrorとして呼び出し元に返す。
package httpclient
