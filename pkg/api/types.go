package api

import (
	"time"

	"github.com/nao1215/civicportal/pkg/access"
)

// User はバックエンドが管理するユーザー。
type User struct {
	ID        string      `json:"_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      access.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	IsBlocked bool        `json:"isBlocked"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// UserRef は他のエンティティに埋め込まれるユーザーの要約。
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProjectRef は他のエンティティに埋め込まれるプロジェクトの要約。
type ProjectRef struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ProjectStatus はプロジェクトの進行状況。
type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "planned"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectStalled   ProjectStatus = "stalled"
)

// ProjectStatuses は選択可能な進行状況を表示順に返す。
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPlanned, ProjectOngoing, ProjectCompleted, ProjectStalled}
}

// Valid は既知の進行状況かどうかを返す。
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectOngoing, ProjectCompleted, ProjectStalled:
		return true
	}
	return false
}

// ProgressEntry は進捗更新の履歴1件。
type ProgressEntry struct {
	Progress  int       `json:"progress"`
	UpdatedBy UserRef   `json:"updatedBy"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project は行政プロジェクト。
type Project struct {
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Department      string          `json:"department"`
	Location        string          `json:"location,omitempty"`
	Status          ProjectStatus   `json:"status"`
	Progress        int             `json:"progress"`
	ProgressHistory []ProgressEntry `json:"progressHistory"`
	CreatedBy       UserRef         `json:"createdBy"`
	IsArchived      bool            `json:"isArchived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BudgetHistoryEntry は予算更新の履歴1件。
type BudgetHistoryEntry struct {
	AllocatedAmount float64   `json:"allocatedAmount"`
	SpentAmount     float64   `json:"spentAmount"`
	UpdatedBy       UserRef   `json:"updatedBy"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Budget はプロジェクトの予算。
type Budget struct {
	ID              string               `json:"_id"`
	Project         ProjectRef           `json:"project"`
	AllocatedAmount float64              `json:"allocatedAmount"`
	SpentAmount     float64              `json:"spentAmount"`
	History         []BudgetHistoryEntry `json:"history"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// Utilization は配分額に対する執行額の割合（0〜100）を返す。配分額が0なら0。
func (b Budget) Utilization() int {
	if b.AllocatedAmount <= 0 {
		return 0
	}
	pct := int(b.SpentAmount / b.AllocatedAmount * 100)
	return min(max(pct, 0), 100)
}

// Comment はプロジェクトへのコメント。
type Comment struct {
	ID        string     `json:"_id"`
	Project   ProjectRef `json:"project"`
	User      UserRef    `json:"user"`
	Content   string     `json:"content"`
	IsDeleted bool       `json:"isDeleted"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IssueStatus は課題の対応状況。
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
)

// IssueStatuses は選択可能な対応状況を表示順に返す。
func IssueStatuses() []IssueStatus {
	return []IssueStatus{IssueOpen, IssueInProgress, IssueResolved}
}

// Valid は既知の対応状況かどうかを返す。
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved:
		return true
	}
	return false
}

// Priority は課題の優先度。
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities は選択可能な優先度を表示順に返す。
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid は既知の優先度かどうかを返す。
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueResponse は課題への回答1件。
type IssueResponse struct {
	RespondedBy UserRef   `json:"respondedBy"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Issue は市民が提起した課題。
type Issue struct {
	ID          string          `json:"_id"`
	Project     ProjectRef      `json:"project"`
	RaisedBy    UserRef         `json:"raisedBy"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Status      IssueStatus     `json:"status"`
	Priority    Priority        `json:"priority"`
	Responses   []IssueResponse `json:"responses"`
	IsEscalated bool            `json:"isEscalated"`
	EscalatedTo *UserRef        `json:"escalatedTo,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PlatformStats は管理画面に表示する集計値。
type PlatformStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalProjects     int `json:"totalProjects"`
	ActiveIssues      int `json:"activeIssues"`
	CompletedProjects int `json:"completedProjects"`
}

// Message はメッセージのみを返すAPIの応答。
type Message struct {
	Message string `json:"message"`
}
