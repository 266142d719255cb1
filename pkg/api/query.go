package api

import (
	"net/url"
	"strconv"
)

// ProjectFilters はプロジェクト一覧の絞り込み条件。空の項目は送信しない。
type ProjectFilters struct {
	Department string
	Status     string
	Location   string
}

// Values はクエリパラメータに変換する。
func (f ProjectFilters) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "department", f.Department)
	setNonEmpty(v, "status", f.Status)
	setNonEmpty(v, "location", f.Location)
	return v
}

// IssueFilters は課題一覧の絞り込み条件。空の項目は送信しない。
type IssueFilters struct {
	Project  string
	Status   string
	Category string
	Priority string
}

// Values はクエリパラメータに変換する。
func (f IssueFilters) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "project", f.Project)
	setNonEmpty(v, "status", f.Status)
	setNonEmpty(v, "category", f.Category)
	setNonEmpty(v, "priority", f.Priority)
	return v
}

// UserFilters はユーザー一覧の絞り込み条件。
// 真偽値はnilの場合のみ省略し、falseは明示的に送信する。
type UserFilters struct {
	Role      string
	IsActive  *bool
	IsBlocked *bool
}

// Values はクエリパラメータに変換する。
func (f UserFilters) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "role", f.Role)
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	if f.IsBlocked != nil {
		v.Set("isBlocked", strconv.FormatBool(*f.IsBlocked))
	}
	return v
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
