package access

import (
	"fmt"
	"strings"
)

// Role はポータル利用者のロールを表す。
type Role string

const (
	// RoleCitizen は一般市民を表す。
	RoleCitizen Role = "citizen"
	// RoleVolunteer はボランティアを表す。
	RoleVolunteer Role = "volunteer"
	// RoleOfficial は行政担当者を表す。
	RoleOfficial Role = "official"
	// RoleAdmin はプラットフォーム管理者を表す。
	RoleAdmin Role = "admin"
)

// Roles は定義済みの全ロールを返す。
func Roles() []Role {
	return []Role{RoleCitizen, RoleVolunteer, RoleOfficial, RoleAdmin}
}

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleVolunteer, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable はサインアップ時に利用者自身が選択できるロールかどうかを返す。
// official と admin は管理者による割り当てのみで付与される。
func (r Role) SelfAssignable() bool {
	return r == RoleCitizen || r == RoleVolunteer
}

// String はロール名を返す。
func (r Role) String() string {
	return string(r)
}

// ParseRole は文字列をRoleに変換する。
// 前後の空白と大文字小文字は無視する。
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("不明なロール: %q", s)
	}
	return r, nil
}
