// Package static は、ルートディレクトリ配下のファイルをHTTPで配信します。
//
// 責務:
//   - リクエストパスをルートディレクトリ配下のファイルに解決する
//   - ファイル内容を拡張子から推定したContent-Typeで返す
//   - ディレクトリ要求に対してインデックスファイルを返す
//
// 仕様:
//   - ルートは os.Root で開き、ルート外への解決はOSレベルで拒否する
//   - ".." セグメント、ドットファイル、NULバイトを含むパスは「見つからない」と同じ扱い (404)
//   - GET と HEAD 以外のメソッドも 404
//   - ETag / Last-Modified / Range は http.ServeContent に任せる
//   - キャッシュは持たず、リクエスト毎にファイルシステムを読む
package static
