package static

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotFound は配信対象のファイルが存在しない、またはルート外を指すことを表す
var ErrNotFound = errors.New("ファイルが見つかりません")

// DefaultIndex はディレクトリ要求時に返すファイル名のデフォルト値
const DefaultIndex = "index.html"

// Options は静的ファイル配信のオプション
type Options struct {
	Index string // ディレクトリ要求時に返すファイル名
}

// Handler はルートディレクトリ配下のファイルを配信する http.Handler
type Handler struct {
	root  *os.Root
	index string
}

// New はルートディレクトリを開いて新しいHandlerを作成する
func New(dir string, opts Options) (*Handler, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("ルートディレクトリのオープンに失敗: %w", err)
	}

	index := opts.Index
	if index == "" {
		index = DefaultIndex
	}

	return &Handler{root: root, index: index}, nil
}

// Root はルートディレクトリのパスを返す
func (h *Handler) Root() string {
	return h.root.Name()
}

// Close はルートディレクトリのハンドルを閉じる
func (h *Handler) Close() error {
	return h.root.Close()
}

// ServeHTTP はリクエストパスに対応するファイルを返す
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	name, err := Resolve(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, info, err := h.open(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if info.IsDir() {
		_ = f.Close()

		// スラッシュなしのディレクトリ要求はリダイレクトする
		if !strings.HasSuffix(r.URL.Path, "/") {
			redirectToDir(w, r, name)
			return
		}

		name = path.Join(name, h.index)
		f, info, err = h.open(name)
		if err != nil {
			h.fail(w, r, err)
			return
		}
	}
	defer f.Close()

	if !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	h.serveFile(w, r, name, f, info)
}

// open はルート配下のファイルを開いて情報を取得する
func (h *Handler) open(name string) (*os.File, fs.FileInfo, error) {
	f, err := h.root.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return f, info, nil
}

// serveFile はファイル内容をキャッシュ用ヘッダー付きで返す
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string, f *os.File, info fs.FileInfo) {
	ctype, err := contentType(name, f)
	if err != nil {
		log.Printf("ファイルの読み込みに失敗しました: %s: %v", r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", ctype)
	header.Set("Cache-Control", "public, max-age=0")
	header.Set("ETag", ETag(info))

	// Last-Modified、条件付きリクエスト、Range、HEAD は ServeContent が処理する
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// fail はファイルシステムのエラーをステータスコードに変換する
// 権限エラー以外 (存在しない、ルート外、ディレクトリでない等) は 404 とする
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, fs.ErrPermission) {
		log.Printf("ファイルの読み込みに失敗しました: %s: %v", r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.NotFound(w, r)
}

// Resolve はURLパスをルートからの相対名に変換する
// ルート外を指しうるパスやドットファイルは ErrNotFound を返す
func Resolve(urlPath string) (string, error) {
	if strings.IndexByte(urlPath, 0) >= 0 {
		return "", fmt.Errorf("%w: NULバイトを含むパス", ErrNotFound)
	}

	// 区切りとして扱われうるバックスラッシュも確認する
	for _, seg := range strings.FieldsFunc(urlPath, isSeparator) {
		if seg == ".." {
			return "", fmt.Errorf("%w: 親ディレクトリへの参照 %q", ErrNotFound, urlPath)
		}
		if seg != "." && strings.HasPrefix(seg, ".") {
			return "", fmt.Errorf("%w: ドットファイル %q", ErrNotFound, urlPath)
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	return name, nil
}

// ETag はファイルサイズと更新時刻から弱いETagを生成する
func ETag(info fs.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().UnixMilli())
}

// contentType は拡張子からContent-Typeを推定する
// 拡張子から判定できない場合は内容から推定する
func contentType(name string, f io.ReadSeeker) (string, error) {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return ctype, nil
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("MIMEタイプの判定に失敗: %w", err)
	}

	// 判定で読んだ分を巻き戻す
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ファイルの巻き戻しに失敗: %w", err)
	}

	return mt.String(), nil
}

// redirectToDir は末尾にスラッシュを付けたパスへリダイレクトする
func redirectToDir(w http.ResponseWriter, r *http.Request, name string) {
	target := url.URL{Path: "/", RawQuery: r.URL.RawQuery}
	if name != "." {
		target.Path = "/" + name + "/"
	}
	http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
