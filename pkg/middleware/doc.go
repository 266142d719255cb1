// Package middleware はポータルのGinミドルウェアを提供する。
//
// ルートガード、401応答による強制遷移、リクエストログ、
// サインインフォームのレート制限、パニックリカバリ、CORS設定を含む。
package middleware
