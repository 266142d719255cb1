// Package session はポータルのセッションストアを提供する。
//
// 認証済みのIdentityと資格情報トークンをプロセス内で1つだけ保持し、
// サインイン・サインアップ・サインアウトの3操作だけがそれを書き換える。
// 状態はローカルの永続ストレージ（SQLite）に保存され、再起動時に復元される。
package session
