// Package server は、HTTPサーバーのライフサイクルとルーティングを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、ミドルウェアの適用、
// グレースフルシャットダウンを担当します。
//
// 責務:
//   - TCPリスナーのバインドとHTTPサーバーの起動・停止
//   - ヘルスチェックのパスを health パッケージへ振り分け
//   - それ以外のすべてのリクエストを static パッケージへ振り分け
//   - リクエストIDの付与とアクセスログ出力
//
// 仕様:
//   - ルーターとミドルウェアはgin-gonic/ginを使用
//   - ポートのバインド失敗は Listen がエラーとして返す
//   - SIGINT / SIGTERM またはコンテキストのキャンセルでグレースフルシャットダウン
//   - 複数クライアントの同時接続をサポート (共有する可変状態はない)
package server
