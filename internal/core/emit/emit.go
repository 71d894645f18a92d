// Package emit writes converted sources into an output directory that
// mirrors the layout of the inputs.
package emit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Writer places converted files under Dir. A source at Base/a/b.js is
// written to Dir/a/b<Suffix>.
type Writer struct {
	Dir    string
	Base   string // defaults to the working directory
	Suffix string // replaces the source extension when set, e.g. ".min.js"

	log zerolog.Logger
}

// New creates a Writer rooted at dir.
func New(dir, base, suffix string, log zerolog.Logger) *Writer {
	if base == "" {
		base = "."
	}
	return &Writer{
		Dir:    dir,
		Base:   base,
		Suffix: suffix,
		log:    log,
	}
}

// Target returns the destination for src without touching the filesystem.
func (w *Writer) Target(src string) (string, error) {
	base, err := filepath.Abs(w.Base)
	if err != nil {
		return "", fmt.Errorf("resolve base: %w", err)
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolve source: %w", err)
	}

	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", fmt.Errorf("relative path for %q: %w", src, err)
	}
	if isPathTraversal(rel) {
		return "", fmt.Errorf("%s is outside base directory %s", src, w.Base)
	}

	if w.Suffix != "" {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + w.Suffix
	}
	return filepath.Join(w.Dir, rel), nil
}

// Write stores content for src, creating parent directories and keeping
// the source file's permissions. It returns the path written.
func (w *Writer) Write(src, content string) (string, error) {
	dst, err := w.Target(src)
	if err != nil {
		return "", err
	}

	if same, err := samePath(src, dst); err != nil {
		return "", err
	} else if same {
		return "", fmt.Errorf("refusing to overwrite source %s", src)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(src); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(dst), fs.ModePerm); err != nil {
		return "", fmt.Errorf("create parent dirs: %w", err)
	}

	if _, err := os.Lstat(dst); err == nil {
		w.log.Debug().Str("path", dst).Msg("overwriting existing file")
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("check destination: %w", err)
	}

	if err := os.WriteFile(dst, []byte(content), mode); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}

	w.log.Debug().
		Str("src", src).
		Str("dst", dst).
		Int("bytes", len(content)).
		Msg("wrote converted file")

	return dst, nil
}

// isPathTraversal returns true if the relative path attempts to escape its base directory.
func isPathTraversal(relPath string) bool {
	clean := filepath.Clean(relPath)
	if filepath.IsAbs(clean) {
		return true
	}
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
