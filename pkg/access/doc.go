// Package access はポータルのロールと権限判定を提供する。
//
// ロールごとに許可されるアクションを1つの権限表として定義し、
// 画面やフォーム操作のアクセス可否はすべてこの表を参照して判定する。
// ルートガードの判定ロジックもここに置き、セッション状態と許可ロールの
// 組み合わせから描画・リダイレクト・拒否のいずれかを決定する。
package access
