package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// clearEnv はテストに影響する環境変数を空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "SERVER_HOST", "PORT", "STATIC_ROOT"} {
		t.Setenv(key, "")
	}
}

// writeFile はテスト用の設定ファイルを作成する
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toudai.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}
	return path
}

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("デフォルト設定が一致しません (-want +got):\n%s", diff)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("デフォルトポートが3000ではありません: %d", cfg.Server.Port)
	}
	if cfg.Static.Root != "public" {
		t.Errorf("デフォルトのルートがpublicではありません: %s", cfg.Static.Root)
	}
	if cfg.Static.HealthPath != "/health" {
		t.Errorf("デフォルトのヘルスチェックパスが/healthではありません: %s", cfg.Static.HealthPath)
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "ポート0は自動選択として許可",
			modify:    func(c *Config) { c.Server.Port = 0 },
			expectErr: false,
		},
		{
			name:      "無効なポート番号",
			modify:    func(c *Config) { c.Server.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "負のポート番号",
			modify:    func(c *Config) { c.Server.Port = -1 },
			expectErr: true,
		},
		{
			name:      "ルートディレクトリなし",
			modify:    func(c *Config) { c.Static.Root = "" },
			expectErr: true,
		},
		{
			name:      "スラッシュで始まらないヘルスチェックパス",
			modify:    func(c *Config) { c.Static.HealthPath = "health" },
			expectErr: true,
		},
		{
			name:      "インデックスにスラッシュを含む",
			modify:    func(c *Config) { c.Static.Index = "sub/index.html" },
			expectErr: true,
		},
		{
			name:      "負のタイムアウト",
			modify:    func(c *Config) { c.Server.ReadTimeout = -time.Second },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
	}

	expected := "192.168.1.100:9090"
	actual := cfg.ServerAddress()

	if actual != expected {
		t.Errorf("サーバーアドレスが一致しません: got %s, want %s", actual, expected)
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
func TestEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("PORT", "9999")
	t.Setenv("STATIC_ROOT", "/srv/www")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("環境変数のホストが反映されていません: got %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("環境変数のポートが反映されていません: got %d, want 9999", cfg.Server.Port)
	}
	if cfg.Static.Root != "/srv/www" {
		t.Errorf("環境変数のルートが反映されていません: got %s, want /srv/www", cfg.Static.Root)
	}
}

// TestInvalidPortEnvIsIgnored は数値でないPORTがデフォルト値に戻ることをテストする
func TestInvalidPortEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("ポートがデフォルト値ではありません: got %d, want %d", cfg.Server.Port, DefaultPort)
	}
}

// TestLoadFile はYAML設定ファイルの読み込みをテストする
func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  host: 127.0.0.1
  port: 8080
  read_timeout: 3s
static:
  root: ./site
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("設定ファイルの読み込みに失敗しました: %v", err)
	}

	want := Default()
	want.Server.Host = "127.0.0.1"
	want.Server.Port = 8080
	want.Server.ReadTimeout = 3 * time.Second
	want.Static.Root = "./site"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("設定が一致しません (-want +got):\n%s", diff)
	}
}

// TestLoadFileErrors は不正な設定ファイルの扱いをテストする
func TestLoadFileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"未知のキー", "server:\n  hots: localhost\n"},
		{"型の不一致", "server:\n  port: many\n"},
		{"検証エラー", "server:\n  port: 70000\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFile(writeFile(t, tc.content)); err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
		})
	}

	t.Run("存在しないファイル", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("エラーが期待されましたが、エラーが発生しませんでした")
		}
	})
}

// TestLoadWithConfigFileEnv は CONFIG_FILE と環境変数の優先順位をテストする
func TestLoadWithConfigFileEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, "server:\n  port: 8080\nstatic:\n  root: from-file\n"))
	t.Setenv("STATIC_ROOT", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("ファイルのポートが反映されていません: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Static.Root != "from-env" {
		t.Errorf("環境変数がファイルより優先されていません: got %s, want from-env", cfg.Static.Root)
	}
}

// TestLoadEmptyFile は空の設定ファイルがデフォルト値になることをテストする
func TestLoadEmptyFile(t *testing.T) {
	cfg, err := LoadFile(writeFile(t, ""))
	if err != nil {
		t.Fatalf("設定ファイルの読み込みに失敗しました: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("デフォルト設定が一致しません (-want +got):\n%s", diff)
	}
}

// TestExampleConfig はリポジトリ同梱の設定例が読み込めることをテストする
func TestExampleConfig(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "configs", "toudai.example.yaml"))
	if err != nil {
		t.Fatalf("設定例の読み込みに失敗しました: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("設定例がデフォルト値と一致しません (-want +got):\n%s", diff)
	}
}
