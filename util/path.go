// Package util provides the two path representations the engine works
// with: absolute filesystem paths (used as file-registry keys) and
// project-relative package paths (used by script-import references).
package util

import (
	"path/filepath"
	"strings"
)

// Path is an absolute filesystem path, used as a file registry key.
type Path = string

// PkgPath is a project-relative, forward-slash path, case-preserved but
// compared case-insensitively. Never carries the "pkg:/" scheme prefix.
type PkgPath = string

const pkgScheme = "pkg:/"

// NormalizePkgPath strips a leading "pkg:/" scheme and converts
// backslashes to forward slashes, as spec.md §6 requires.
func NormalizePkgPath(raw string) PkgPath {
	s := raw
	if strings.HasPrefix(s, pkgScheme) {
		s = s[len(pkgScheme):]
	}
	return filepath.ToSlash(s)
}

// PkgPathEqual compares two package paths case-insensitively, per
// spec.md §6 ("case-preserved but compared case-insensitively").
func PkgPathEqual(a, b PkgPath) bool {
	return strings.EqualFold(a, b)
}

// AbsFromRoot joins a package path onto a root directory to produce an
// absolute filesystem path.
func AbsFromRoot(root Path, pkg PkgPath) Path {
	return filepath.Join(root, filepath.FromSlash(pkg))
}

// PkgFromRoot derives a package path from an absolute path given the
// workspace root, preserving case.
func PkgFromRoot(root Path, abs Path) (PkgPath, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
