package fs

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath converts a logical resource path to a clean, absolute form.
// It resolves ".", "..", multiple slashes and trailing slashes (except for root).
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return cleaned
}

// Logical maps a host path below root to the logical resource path used in events,
// e.g. root=/srv/repo, name=/srv/repo/docs/a.md gives /docs/a.md.
func Logical(root, name string) (string, error) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", fmt.Errorf("logical path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("logical path: %s is outside %s", name, root)
	}
	return NormalizePath(rel), nil
}

// ParentPath returns the parent of a logical path. Returns "/" for root and first-level paths.
func ParentPath(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return "/"
	}
	return path.Dir(p)
}

// BaseName returns the final component of a logical path.
func BaseName(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return "/"
	}
	return path.Base(p)
}

// IsRoot returns true if the path is the root of the watched tree.
func IsRoot(p string) bool {
	return NormalizePath(p) == "/"
}
