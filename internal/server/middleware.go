package server

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// RequestIDHeader はリクエストIDを運ぶヘッダー名
const RequestIDHeader = "X-Request-ID"

// requestIDKey はginコンテキスト上のリクエストIDのキー
const requestIDKey = "request_id"

// maxRequestIDLength を超えるクライアント指定のIDは採用しない
const maxRequestIDLength = 128

// RequestID はリクエスト毎にIDを付与するミドルウェア
// クライアントがIDを指定した場合はそれを引き継ぐ
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog はリクエストIDを含むアクセスログを出力するミドルウェア
func AccessLog(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    out,
		Formatter: formatAccessLog,
	})
}

// formatAccessLog はアクセスログの1行を組み立てる
func formatAccessLog(p gin.LogFormatterParams) string {
	id, _ := p.Keys[requestIDKey].(string)

	statusColor, resetColor := "", ""
	if p.IsOutputColor() {
		statusColor, resetColor = p.StatusCodeColor(), p.ResetColor()
	}

	return fmt.Sprintf("%s |%s %3d %s| %13v | %15s | %-7s %#v | %s\n",
		p.TimeStamp.Format("2006/01/02 15:04:05"),
		statusColor, p.StatusCode, resetColor,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
		id,
	)
}

// configureConsole は標準出力が端末でない場合にログの色付けを無効化する
func configureConsole() {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		gin.DisableConsoleColor()
	}
}
