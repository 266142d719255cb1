// Package api はバックエンドREST APIの呼び出し口をリソースごとにまとめて提供する。
//
// すべての呼び出しはhttpclient.Clientを経由するため、トークンの付与と
// 401応答時のセッション失効処理はここでは扱わない。
package api
