package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired はトークンがJWTとして読めて、かつexpが過ぎている場合にtrueを返す。
// 署名は検証しない（検証はバックエンドの責務）。JWTでないトークンは
// 不透明な値として扱い、期限切れとはみなさない。
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
