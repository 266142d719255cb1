package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/civicportal/pkg/access"
)

// ErrRoleNotSelfAssignable はサインアップで選択できないロールが指定されたことを表す。
var ErrRoleNotSelfAssignable = errors.New("このロールはサインアップ時に選択できません")

// Authenticator はセッションストアが呼び出す認証APIの抽象。
type Authenticator interface {
	// Login はメールアドレスとパスワードで認証する。
	Login(ctx context.Context, email, password string) (Credentials, error)
	// Signup はアカウントを作成して認証する。
	Signup(ctx context.Context, name, email, password string, role access.Role) (Credentials, error)
	// Logout はリモートのセッションを無効化する。
	Logout(ctx context.Context) error
}

// Store はプロセス内で唯一のセッションストア。
// Identityとトークンは常に同じロックの下で同時に設定・消去される。
type Store struct {
	// auth は認証APIクライアント。
	auth Authenticator
	// storage はセッションの永続先。
	storage Storage
	// logger は構造化ロガー。
	logger *zap.Logger
	// now は時刻取得関数。テストで差し替える。
	now func() time.Time

	// restoreOnce はRestoreを1回だけ実行するためのガード。
	restoreOnce sync.Once
	// writeMu は永続化とメモリ更新を一体で行う書き込み操作を直列化する。
	writeMu sync.Mutex

	mu       sync.RWMutex
	identity *Identity
	token    string
	loading  bool
}

// NewStore は未認証・復元待ちのセッションストアを生成する。
// 起動時にRestoreを呼び出すまでLoadingはtrueのままとなる。
func NewStore(storage Storage, auth Authenticator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:    auth,
		storage: storage,
		logger:  logger,
		now:     time.Now,
		loading: true,
	}
}

// Restore は永続ストレージからセッションを復元する。
// トークンとIdentityがそろっていて正しく読めた場合のみ認証済みになり、
// それ以外は両方のキーを削除して未認証で開始する。
// ネットワークには一切アクセスせず、成否に関わらずLoadingをfalseにする。
// 復元中に完了したLoginやExpireの書き込みを消さないよう、
// 復元の間は他の書き込み操作を待たせる。
// 2回目以降の呼び出しは何もしない。
func (s *Store) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		defer s.finishLoading()
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		creds, err := s.readPersisted(ctx)
		if err != nil {
			if !errors.Is(err, errNotPersisted) {
				s.logger.Warn("保存済みセッションを破棄します", zap.Error(err))
			}
			s.purge(ctx)
			return
		}

		s.mu.Lock()
		s.token = creds.Token
		s.identity = &creds.User
		s.mu.Unlock()
		s.logger.Info("セッションを復元しました",
			zap.String("user_id", creds.User.ID),
			zap.String("role", creds.User.Role.String()))
	})
}

// errNotPersisted はセッションが保存されていないことを表す。
var errNotPersisted = errors.New("セッションが保存されていません")

// readPersisted は保存済みのトークンとIdentityを読み込んで検証する。
func (s *Store) readPersisted(ctx context.Context) (Credentials, error) {
	token, hasToken, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return Credentials{}, err
	}
	raw, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		return Credentials{}, err
	}
	if !hasToken && !hasUser {
		return Credentials{}, errNotPersisted
	}
	if !hasToken || !hasUser {
		return Credentials{}, errors.New("トークンとユーザー情報の片方だけが保存されています")
	}

	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return Credentials{}, fmt.Errorf("ユーザー情報のパースに失敗: %w", err)
	}
	creds := Credentials{Token: token, User: identity}
	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	if tokenExpired(token, s.now()) {
		return Credentials{}, errors.New("トークンの有効期限が切れています")
	}
	return creds, nil
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Login は認証APIでサインインし、成功時にセッションを保存する。
// 失敗時のエラーはそのまま返し、セッションは変更しない。
func (s *Store) Login(ctx context.Context, email, password string) error {
	creds, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, creds)
}

// Signup はアカウントを作成し、成功時にセッションを保存する。
// citizen と volunteer 以外のロールはAPIを呼び出さずに拒否する。
func (s *Store) Signup(ctx context.Context, name, email, password string, role access.Role) error {
	if !role.SelfAssignable() {
		return fmt.Errorf("%w: %q", ErrRoleNotSelfAssignable, role)
	}
	creds, err := s.auth.Signup(ctx, name, email, password, role)
	if err != nil {
		return err
	}
	return s.establish(ctx, creds)
}

// establish は資格情報を永続化してからメモリ上のセッションに反映する。
// 永続化に失敗した場合はセッションを変更しない。
func (s *Store) establish(ctx context.Context, creds Credentials) error {
	if err := creds.validate(); err != nil {
		return fmt.Errorf("認証レスポンスが不正です: %w", err)
	}
	raw, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("ユーザー情報のシリアライズに失敗: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.SetAll(ctx, map[string]string{
		KeyToken: creds.Token,
		KeyUser:  string(raw),
	}); err != nil {
		return fmt.Errorf("セッションの保存に失敗: %w", err)
	}

	user := creds.User
	s.mu.Lock()
	s.token = creds.Token
	s.identity = &user
	s.mu.Unlock()

	s.logger.Info("サインインしました",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role.String()))
	return nil
}

// Logout はリモートのサインアウトを試みたうえで、結果に関わらず
// ローカルのセッションを消去する。リモートの失敗は呼び出し元に返さない。
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("リモートのサインアウトに失敗しました", zap.Error(err))
	}
	s.Expire(ctx)
}

// Expire はメモリと永続ストレージの両方からセッションを消去する。
// セッションを消去する唯一の経路であり、サインアウトと
// ゲートウェイの401処理の両方から呼び出される。何度呼んでもよい。
func (s *Store) Expire(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	s.purge(ctx)
}

// purge は永続ストレージのトークンとIdentityを削除する。
// 呼び出し元のコンテキストがキャンセルされていても削除は行う。
func (s *Store) purge(ctx context.Context) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), KeyToken, KeyUser); err != nil {
		s.logger.Error("保存済みセッションの削除に失敗しました", zap.Error(err))
	}
}

// Token は現在のトークンを返す。未認証の場合は空文字列を返す。
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity は現在のIdentityを返す。未認証の場合は ok=false を返す。
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// IsAuthenticated は認証済みかどうかを返す。
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Loading は起動時の復元が完了していないかどうかを返す。
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// AccessState はルートガード用の状態スナップショットを返す。
func (s *Store) AccessState() access.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := access.State{Loading: s.loading, Authenticated: s.identity != nil}
	if s.identity != nil {
		state.Role = s.identity.Role
	}
	return state
}
