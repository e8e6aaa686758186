// Package script loads script files and converts them to UTF-8.
package script

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/trace/pkg/fileutil"
)

// Ext はスクリプトファイルの拡張子
const Ext = ".trace"

// Script はスクリプトファイルを表す
type Script struct {
	FileName string // ファイル名（ルートからの相対パス）
	Content  string // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// LookupEncoding エンコーディング名からencoding.Encodingを取得
// 空文字列はUTF-8として扱う
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		// BOMがあれば取り除く
		return unicode.UTF8BOM, nil
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	case "euc-jp", "eucjp":
		return japanese.EUCJP, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	fs       fileutil.FileSystem
	encoding encoding.Encoding
}

// LoaderOption Loaderの設定オプション
type LoaderOption func(*Loader)

// WithEncoding ファイルのエンコーディングを指定（デフォルトはUTF-8）
func WithEncoding(enc encoding.Encoding) LoaderOption {
	return func(l *Loader) {
		l.encoding = enc
	}
}

// NewLoader ディレクトリから読み込むLoaderを作成
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	return NewLoaderFS(fileutil.NewRealFS(dir), opts...)
}

// NewLoaderFS 任意のFileSystemから読み込むLoaderを作成
func NewLoaderFS(fsys fileutil.FileSystem, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:       fsys,
		encoding: unicode.UTF8BOM,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load 単一のスクリプトファイルを読み込む
func (l *Loader) Load(name string) (*Script, error) {
	info, err := l.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := l.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: name,
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// LoadAll すべての.traceファイルを読み込む
func (l *Loader) LoadAll() ([]Script, error) {
	scriptFiles, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(scriptFiles) == 0 {
		return nil, fmt.Errorf("no script files found in %s", l.fs.BasePath())
	}

	scripts := make([]Script, 0, len(scriptFiles))
	for _, name := range scriptFiles {
		s, err := l.Load(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load script %s: %w", name, err)
		}
		scripts = append(scripts, *s)
	}

	return scripts, nil
}

// findScriptFiles .traceファイルを検出（case-insensitive）
func (l *Loader) findScriptFiles() ([]string, error) {
	var scriptFiles []string

	err := l.fs.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && fileutil.HasExt(path, Ext) {
			scriptFiles = append(scriptFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return scriptFiles, nil
}

// Decode 指定されたエンコーディングからUTF-8に変換
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode: %w", err)
	}

	return string(utf8Data), nil
}
