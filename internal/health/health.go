// Package health は、外部監視向けの死活確認エンドポイントを提供します。
//
// 応答はプロセスの状態やファイルシステムに依存せず、常に 200 と "OK" を返します。
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultPath はヘルスチェックのデフォルトパス
const DefaultPath = "/health"

// Body はヘルスチェックの応答本文
const Body = "OK"

// Handler はヘルスチェックのハンドラ
type Handler struct{}

// New は新しいHandlerを作成する
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes はヘルスチェックのルートをGETとHEADで登録する
func (h *Handler) RegisterRoutes(r gin.IRoutes, path string) {
	if path == "" {
		path = DefaultPath
	}
	r.GET(path, h.Check)
	r.HEAD(path, h.Check)
}

// Check はヘルスチェックエンドポイントの実装
func (h *Handler) Check(c *gin.Context) {
	c.String(http.StatusOK, Body)
}
