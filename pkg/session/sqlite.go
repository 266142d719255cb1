package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nao1215/civicportal/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStorage はSQLiteファイルに保存するStorage実装。
type SQLiteStorage struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// now は更新日時の取得に使う時刻関数。
	now func() time.Time
}

// OpenSQLite は指定パスのSQLiteデータベースを開き、スキーマを適用する。
// ":memory:" を指定した場合はインメモリデータベースになる。
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStorage, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("データディレクトリの作成に失敗: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == ":memory:" {
		// :memory: は接続ごとに別DBになるため1接続に固定する
		db.SetMaxOpenConns(1)
	}

	s := NewSQLiteStorage(db)
	if _, err := migration.Run(ctx, db, migrations, "migrations", logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return s, nil
}

// NewSQLiteStorage は既存の接続からSQLiteStorageを生成する。
// スキーマは適用済みであることを前提とする。
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db, now: time.Now}
}

// Get はキーの値を返す。
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%sの読み込みに失敗: %w", key, err)
	}
	return value, true, nil
}

// SetAll は複数のキーを1トランザクションで書き込む。
func (s *SQLiteStorage) SetAll(ctx context.Context, items map[string]string) error {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	updatedAt := s.now().UTC()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, items[k], updatedAt); err != nil {
			return fmt.Errorf("%sの書き込みに失敗: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// Delete はキーを削除する。
func (s *SQLiteStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM local_storage WHERE key IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("削除に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
