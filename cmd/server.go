// Package main はToudaiサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"toudai/api"
	"toudai/internal/config"
	"toudai/internal/server"
)

// options はコマンドラインオプション
type options struct {
	host       string
	port       int
	root       string
	configPath string
	openapi    bool
	help       bool
}

func main() {
	opts := &options{}
	fs := newFlagSet(opts)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	// ヘルプ表示
	if opts.help {
		printUsage(fs)
		os.Exit(0)
	}

	// OpenAPIドキュメントの出力
	if opts.openapi {
		if _, err := api.Load(context.Background()); err != nil {
			log.Fatalf("OpenAPIドキュメントが不正です: %v", err)
		}
		_, _ = os.Stdout.Write(api.Spec())
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを作成
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}

// newFlagSet はコマンドラインオプションの定義を作成する
func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.host, "host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
	fs.IntVar(&opts.port, "port", -1, "サーバーのポート (デフォルト: 3000, 0 で自動選択)")
	fs.StringVar(&opts.root, "root", "", "配信するルートディレクトリ (デフォルト: public)")
	fs.StringVar(&opts.configPath, "config", "", "YAML設定ファイルのパス")
	fs.BoolVar(&opts.openapi, "openapi", false, "OpenAPIドキュメントを出力して終了")
	fs.BoolVar(&opts.help, "help", false, "ヘルプを表示")
	return fs
}

// loadConfig は設定を読み込み、コマンドラインオプションで上書きする
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// コマンドラインオプションで設定を上書き
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port >= 0 {
		cfg.Server.Port = opts.port
	}
	if opts.root != "" {
		cfg.Static.Root = opts.root
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}
	return cfg, nil
}

// printUsage はヘルプを表示する
func printUsage(fs *flag.FlagSet) {
	fmt.Println("Toudai")
	fmt.Println()
	fmt.Println("使用方法:")
	fmt.Println("  server [オプション]")
	fmt.Println()
	fmt.Println("オプション:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
}
