package session

import (
	"testing"
	"time"
)

// TestTokenExpired はtokenExpired関数を検証する。
func TestTokenExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"不透明なトークンは期限切れとみなさない", "t1", false},
		{"有効期限内のJWT", signedToken(t, now.Add(time.Hour)), false},
		{"有効期限切れのJWT", signedToken(t, now.Add(-time.Minute)), true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tokenExpired(tt.token, now); got != tt.want {
				t.Errorf("tokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
