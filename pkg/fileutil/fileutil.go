// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FindFileCaseInsensitive searches dir of fsys for a file named filename,
// ignoring case, and returns its slash-separated path within fsys.
//
// Parameters:
//   - fsys: The file system to search in
//   - dir: The directory to search in ("." for the root)
//   - filename: The filename to search for (case-insensitive)
//
// Returns:
//   - string: The actual path to the file if found
//   - error: Error if the file is not found or if there's an I/O error
//
// Example:
//
//	p, err := FindFileCaseInsensitive(os.DirFS("/scripts"), ".", "Hello.TRACE")
//	// Will find "hello.trace", "HELLO.TRACE", etc.
func FindFileCaseInsensitive(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return path.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// HasExt reports whether name ends in ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.EqualFold(path.Ext(name), ext)
}
