package access

import "slices"

// State はルートガードが参照するセッション状態のスナップショット。
type State struct {
	// Loading は起動時のセッション復元が完了していないことを表す。
	Loading bool
	// Authenticated は認証済みのIdentityが存在することを表す。
	Authenticated bool
	// Role は認証済みユーザーのロール。未認証の場合は空。
	Role Role
}

// Outcome はルートガードの判定結果。
type Outcome int

const (
	// OutcomeLoading はセッション復元中のため待機画面を表示する。
	OutcomeLoading Outcome = iota
	// OutcomeUnauthenticated はサインイン画面へリダイレクトする。
	OutcomeUnauthenticated
	// OutcomeForbidden はその場でアクセス拒否を表示する。
	OutcomeForbidden
	// OutcomeAuthorized は要求された画面を描画する。
	OutcomeAuthorized
)

// String は判定結果の名前を返す。
func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Decide はセッション状態と許可ロールから判定結果を返す。
// allowedが空の場合は認証済みであれば誰でも許可する。
// 判定は入力だけで決まり、内部状態を持たない。
func Decide(state State, allowed []Role) Outcome {
	if state.Loading {
		return OutcomeLoading
	}
	if !state.Authenticated {
		return OutcomeUnauthenticated
	}
	if len(allowed) > 0 && !slices.Contains(allowed, state.Role) {
		return OutcomeForbidden
	}
	return OutcomeAuthorized
}
