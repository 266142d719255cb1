// Package config は環境変数からポータルの設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はポータルの設定。
type Config struct {
	// Port は待ち受けポート。
	Port string
	// APIBaseURL はバックエンドAPIのベースURL。
	APIBaseURL string
	// DataPath はセッションを保存するSQLiteファイルのパス。
	DataPath string
	// AllowedOrigins は /session へのクロスオリジンアクセスを許可するオリジン。
	AllowedOrigins []string
	// APITimeout はバックエンドAPI呼び出しのタイムアウト。
	APITimeout time.Duration
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration
	// LoginRatePerMinute はサインインフォームの1分あたりの試行回数。
	LoginRatePerMinute float64
	// LoginBurst はサインインフォームの連続試行回数。
	LoginBurst int
}

// Load は環境変数から設定を読み込む。未設定の項目は既定値になる。
func Load() Config {
	return Config{
		Port:               getenv("PORT", "3000"),
		APIBaseURL:         getenv("API_BASE_URL", "http://localhost:5000/api"),
		DataPath:           getenv("DATA_PATH", "./data/portal.db"),
		AllowedOrigins:     getenvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		APITimeout:         getenvDuration("API_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LoginRatePerMinute: getenvFloat("LOGIN_RATE_PER_MINUTE", 10),
		LoginBurst:         getenvInt("LOGIN_BURST", 5),
	}
}

// LoadDotenv は.envファイルを環境変数に読み込む。既に設定済みの変数は上書きしない。
// ファイルが存在しない場合は何もしない。
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%sの読み込みに失敗: %w", p, err)
		}
	}
	return nil
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URLが空です")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URLはhttp(s)のURLである必要があります: %q", c.APIBaseURL)
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		return errors.New("サインインのレート制限は正の値である必要があります")
	}
	return nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getenvList はカンマ区切りの値を読み込む。空要素は無視する。
func getenvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
