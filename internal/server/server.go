package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"toudai/internal/config"
	"toudai/internal/health"
	"toudai/internal/static"
)

// defaultShutdownTimeout は設定で猶予が指定されていない場合のシャットダウン猶予
const defaultShutdownTimeout = 5 * time.Second

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	static     *static.Handler
	httpServer *http.Server
	listener   net.Listener
}

// New は新しいServerインスタンスを作成する
// ルートディレクトリが開けない場合はエラーを返す
func New(cfg *config.Config) (*Server, error) {
	staticHandler, err := static.New(cfg.Static.Root, static.Options{Index: cfg.Static.Index})
	if err != nil {
		return nil, fmt.Errorf("静的ファイル配信の初期化に失敗: %w", err)
	}

	engine := newEngine()

	s := &Server{
		config: cfg,
		engine: engine,
		static: staticHandler,
		httpServer: &http.Server{
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
	s.setupRoutes()

	return s, nil
}

// newEngine はミドルウェアを適用したginエンジンを作成する
func newEngine() *gin.Engine {
	// GIN_MODE が指定されていなければリリースモードで動かす
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	configureConsole()

	engine := gin.New()
	engine.Use(RequestID(), AccessLog(gin.DefaultWriter), gin.Recovery())
	return engine
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	// ヘルスチェックエンドポイント
	health.New().RegisterRoutes(s.engine, s.config.Static.HealthPath)

	// それ以外はすべて静的ファイル
	s.engine.NoRoute(gin.WrapH(s.static))
}

// Handler はルーティング済みの http.Handler を返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Listen はTCPリスナーをバインドする
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("%s のバインドに失敗: %w", s.config.ServerAddress(), err)
	}
	s.listener = ln
	return nil
}

// Addr はバインド済みのアドレスを返す
// Listen 前は nil を返す
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// URL は起動ログに表示するURLを返す
func (s *Server) URL() string {
	port := s.config.Server.Port
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// Start はリスナーをバインドしてサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve はコンテキストのキャンセルかシグナルを受けるまでリクエストを処理する
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	log.Printf("Server running at %s (root: %s)", s.URL(), s.static.Root())

	// サーバーを別ゴルーチンで起動
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの実行に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		_ = s.static.Close()
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	if err := s.static.Close(); err != nil {
		return fmt.Errorf("ルートディレクトリのクローズに失敗: %w", err)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}
