package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/civicportal/pkg/access"
)

// Identity は認証済みユーザーの識別情報。
type Identity struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name は表示名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Role はユーザーのロール。
	Role access.Role `json:"role"`
}

// Credentials は認証APIが返すトークンとIdentityの組。
type Credentials struct {
	// Token はAPI呼び出しに付与するBearerトークン。
	Token string `json:"token"`
	// User は認証されたユーザーのIdentity。
	User Identity `json:"user"`
}

// errInvalidIdentity はIdentityの内容が不正であることを表す。
var errInvalidIdentity = errors.New("identityが不正です")

// validate はIdentityが永続化・復元に使える内容かを検証する。
func (i Identity) validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: idが空です", errInvalidIdentity)
	}
	if !i.Role.Valid() {
		return fmt.Errorf("%w: 不明なロール %q", errInvalidIdentity, i.Role)
	}
	return nil
}

// validate はトークンとIdentityがそろっていることを検証する。
func (c Credentials) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("%w: トークンが空です", errInvalidIdentity)
	}
	return c.User.validate()
}
