// 行政透明化ポータルのエントリポイント。
// セッションをSQLiteに保存し、バックエンドAPIをゲートウェイ経由で呼び出す
// サーバーサイドレンダリングのWebサーバーを起動する。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nao1215/civicportal/internal/config"
	"github.com/nao1215/civicportal/internal/portal"
	"github.com/nao1215/civicportal/pkg/api"
	"github.com/nao1215/civicportal/pkg/httpclient"
	"github.com/nao1215/civicportal/pkg/metrics"
	"github.com/nao1215/civicportal/pkg/middleware"
	"github.com/nao1215/civicportal/pkg/session"
)

var (
	// logger はPersistentPreRunEで初期化される。
	logger *zap.Logger

	verbose   bool
	ephemeral bool
	apiBase   string
	port      string
	dataPath  string
)

var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "Civic transparency portal",
	Long:          "Serves the civic transparency portal: public projects and issues, citizen participation, and official/admin tooling backed by the portal REST API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("ロガーの初期化に失敗: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("api-base") {
			cfg.APIBaseURL = apiBase
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("data") {
			cfg.DataPath = dataPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&apiBase, "api-base", "", "Backend API base URL (or set API_BASE_URL)")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (or set PORT)")
	rootCmd.Flags().StringVar(&dataPath, "data", "", "SQLite file for the persisted session (or set DATA_PATH)")
	rootCmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only")
}

func main() {
	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if logger != nil {
			logger.Error("ポータルの実行に失敗しました", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// openStorage はセッションの保存先を開く。closeFnは終了時に呼び出す。
func openStorage(ctx context.Context, cfg config.Config) (storage session.Storage, closeFn func() error, err error) {
	if ephemeral {
		logger.Info("セッションはメモリにのみ保存します")
		return session.NewMemoryStorage(), func() error { return nil }, nil
	}
	sqlite, err := session.OpenSQLite(ctx, cfg.DataPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return sqlite, sqlite.Close, nil
}

// run はコンポーネントを組み立ててサーバーを起動し、ctxが終了するまで待つ。
func run(ctx context.Context, cfg config.Config) error {
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Warn("セッションストレージのクローズに失敗しました", zap.Error(err))
		}
	}()

	m := metrics.New()
	hc := httpclient.New(cfg.APIBaseURL,
		httpclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		httpclient.WithLogger(logger),
		httpclient.WithNavigator(middleware.Navigate),
		httpclient.WithObserver(m.ObserveAPICall),
	)
	client := api.New(hc)
	store := session.NewStore(storage, client.Auth, logger)
	hc.Bind(store)

	server, err := portal.NewServer(cfg, store, client, m, logger)
	if err != nil {
		return fmt.Errorf("ポータルサーバーの初期化に失敗: %w", err)
	}

	// 復元が終わるまでガード付きの画面は読み込み中を返す
	go store.Restore(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("ポータルを起動します",
			zap.String("addr", srv.Addr),
			zap.String("api_base_url", cfg.APIBaseURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("ポータルを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("グレースフルシャットダウンに失敗: %w", err)
	}
	return nil
}
