// Package portal はシビック透明性ポータルのWebサーバーを提供する。
//
// サーバーはローカルで起動し、1つのブラウザに対して画面を返す。
// プロセス全体で1つのセッションを持ち、バックエンドAPIへの呼び出しは
// すべて認証付きHTTPクライアントを経由する。401応答を受けた場合は
// ForcedNavigationミドルウェアがサインイン画面へのリダイレクトを行う。
package portal
