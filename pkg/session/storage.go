package session

import (
	"context"
	"sync"
)

const (
	// KeyToken はトークンを保存するキー。
	KeyToken = "token"
	// KeyUser はJSON形式のIdentityを保存するキー。
	KeyUser = "user"
)

// Storage はセッションを保存する永続キーバリューストア。
type Storage interface {
	// Get はキーの値を返す。存在しない場合は ok=false を返す。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetAll は複数のキーをまとめて書き込む。一部だけが書き込まれることはない。
	SetAll(ctx context.Context, items map[string]string) error
	// Delete はキーを削除する。存在しないキーは無視する。
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStorage はプロセス内のみで保持するStorage実装。
// テストや一時的な起動で使用する。
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStorage は空のMemoryStorageを生成する。
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// Get はキーの値を返す。
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetAll は複数のキーをまとめて書き込む。
func (m *MemoryStorage) SetAll(_ context.Context, items map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

// Delete はキーを削除する。
func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}
