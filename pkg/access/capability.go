package access

// Action は権限判定の対象となる操作を表す。
type Action string

const (
	// ActionViewProjects はプロジェクトの閲覧。
	ActionViewProjects Action = "projects.view"
	// ActionCreateProject はプロジェクトの作成。
	ActionCreateProject Action = "projects.create"
	// ActionEditProject はプロジェクトの編集、ステータス・進捗の更新。
	ActionEditProject Action = "projects.edit"
	// ActionArchiveProject はプロジェクトのアーカイブ。
	ActionArchiveProject Action = "projects.archive"
	// ActionManageBudget は予算の登録と更新。
	ActionManageBudget Action = "budgets.manage"
	// ActionComment はプロジェクトへのコメント投稿。
	ActionComment Action = "comments.create"
	// ActionViewIssues は課題の閲覧。
	ActionViewIssues Action = "issues.view"
	// ActionRaiseIssue は課題の起票。
	ActionRaiseIssue Action = "issues.raise"
	// ActionRespondIssue は課題への回答とステータス更新。
	ActionRespondIssue Action = "issues.respond"
	// ActionEscalateIssue は課題のエスカレーション。
	ActionEscalateIssue Action = "issues.escalate"
	// ActionManageProfile は自身のプロフィール管理。
	ActionManageProfile Action = "profile.manage"
	// ActionAdminDashboard は管理ダッシュボードの閲覧。
	ActionAdminDashboard Action = "admin.dashboard"
	// ActionManageUsers はユーザーのロール割り当て・ブロック・無効化。
	ActionManageUsers Action = "admin.users"
	// ActionModerateComments はコメントの削除。
	ActionModerateComments Action = "admin.comments"
)

// everyone は全ロールに許可されるアクション。
var everyone = []Action{
	ActionViewProjects,
	ActionComment,
	ActionViewIssues,
	ActionRaiseIssue,
	ActionManageProfile,
}

// staff は行政担当者以上に許可されるアクション。
var staff = []Action{
	ActionCreateProject,
	ActionEditProject,
	ActionArchiveProject,
	ActionManageBudget,
	ActionRespondIssue,
	ActionEscalateIssue,
}

// administration は管理者のみに許可されるアクション。
var administration = []Action{
	ActionAdminDashboard,
	ActionManageUsers,
	ActionModerateComments,
}

// capabilities はロールごとの権限表。アクセス判定はすべてこの表を参照する。
var capabilities = map[Role]map[Action]struct{}{
	RoleCitizen:   actionSet(everyone),
	RoleVolunteer: actionSet(everyone),
	RoleOfficial:  actionSet(everyone, staff),
	RoleAdmin:     actionSet(everyone, staff, administration),
}

func actionSet(groups ...[]Action) map[Action]struct{} {
	set := make(map[Action]struct{})
	for _, g := range groups {
		for _, a := range g {
			set[a] = struct{}{}
		}
	}
	return set
}

// Can はロールがアクションを実行できるかどうかを返す。
// 未定義のロールは常にfalseとなる。
func Can(role Role, action Action) bool {
	_, ok := capabilities[role][action]
	return ok
}

// RolesFor はアクションを実行できるロールの一覧を返す。
// ルートの許可ロールリストはこの関数で権限表から導出する。
func RolesFor(action Action) []Role {
	var roles []Role
	for _, r := range Roles() {
		if Can(r, action) {
			roles = append(roles, r)
		}
	}
	return roles
}
