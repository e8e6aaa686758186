package fileutil

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// FileSystem は実ファイルシステムと埋め込みファイルシステムを統一的に扱うインターフェース
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Stat はファイル情報を返す（大文字小文字を無視）
	Stat(name string) (fs.FileInfo, error)
	// WalkDir はディレクトリを再帰的に走査する（パスはルートからの相対パス）
	WalkDir(root string, fn fs.WalkDirFunc) error
	// BasePath はベースパスを返す
	BasePath() string
}

// dirFS は fs.FS の上に FileSystem を実装する
type dirFS struct {
	fsys     fs.FS
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) FileSystem {
	if basePath == "" {
		basePath = "."
	}
	return &dirFS{fsys: os.DirFS(basePath), basePath: basePath}
}

// NewEmbedFS は埋め込みファイルシステム用のFileSystemを作成する
// basePath が空でなければそのサブディレクトリをルートとして扱う
func NewEmbedFS(fsys fs.FS, basePath string) (FileSystem, error) {
	root := fsys
	if basePath != "" && basePath != "." {
		sub, err := fs.Sub(fsys, basePath)
		if err != nil {
			return nil, err
		}
		root = sub
	}
	return &dirFS{fsys: root, basePath: basePath}, nil
}

func (d *dirFS) ReadFile(name string) ([]byte, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(d.fsys, p)
}

func (d *dirFS) Stat(name string) (fs.FileInfo, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	return fs.Stat(d.fsys, p)
}

func (d *dirFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return fs.WalkDir(d.fsys, clean(root), fn)
}

func (d *dirFS) BasePath() string {
	return d.basePath
}

// resolve はまず直接アクセスを試み、なければ大文字小文字を無視して検索する
func (d *dirFS) resolve(name string) (string, error) {
	p := clean(name)
	if _, err := fs.Stat(d.fsys, p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitive(d.fsys, path.Dir(p), path.Base(p))
}

// clean は fs.FS で使える形式のパスに変換する
func clean(name string) string {
	// 先頭の "/" や "\" を除去
	p := strings.ReplaceAll(name, "\\", "/")
	p = path.Clean(strings.TrimLeft(p, "/"))
	if p == "" {
		return "."
	}
	return p
}
