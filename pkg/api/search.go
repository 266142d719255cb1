package api

import "strings"

// SearchProjects はタイトル、部署、所在地のいずれかにqを含むプロジェクトを返す。
// 大文字小文字は区別しない。qが空なら全件を返す。
func SearchProjects(projects []Project, q string) []Project {
	return filter(projects, q, func(p Project) []string {
		return []string{p.Title, p.Department, p.Location}
	})
}

// SearchIssues はタイトル、説明、カテゴリのいずれかにqを含む課題を返す。
func SearchIssues(issues []Issue, q string) []Issue {
	return filter(issues, q, func(i Issue) []string {
		return []string{i.Title, i.Description, i.Category}
	})
}

// SearchUsers は名前かメールアドレスにqを含み、roleが空または一致するユーザーを返す。
func SearchUsers(users []User, q, role string) []User {
	matched := filter(users, q, func(u User) []string {
		return []string{u.Name, u.Email}
	})
	if role == "" {
		return matched
	}
	out := matched[:0:0]
	for _, u := range matched {
		if string(u.Role) == role {
			out = append(out, u)
		}
	}
	return out
}

func filter[T any](items []T, q string, fields func(T) []string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
