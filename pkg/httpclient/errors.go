package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired は401応答によりセッションが失効したことを表す。
// メッセージはそのまま画面に表示される。
var ErrSessionExpired = errors.New("Session expired. Please login again.") //nolint:staticcheck

// ErrRequestFailed は401以外の失敗応答を表す。RequestErrorがこのエラーに一致する。
var ErrRequestFailed = errors.New("request failed")

// ErrNotFound は404応答を表す。ステータス404のRequestErrorがこのエラーに一致する。
var ErrNotFound = errors.New("not found")

// RequestError はAPIが2xx以外（401を除く）を返したことを表す。
type RequestError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Message は応答ボディのmessage、または汎用メッセージ。
	Message string
}

// Error はユーザーに表示するメッセージを返す。
func (e *RequestError) Error() string {
	return e.Message
}

// Is はErrRequestFailedと、404の場合はErrNotFoundに一致する。
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// fallbackMessage はボディからメッセージを得られない場合の汎用メッセージを返す。
func fallbackMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}
