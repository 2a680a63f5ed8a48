// Package sitepath validates and canonicalizes destination paths for
// generated files and classifies them by role. Paths live purely in the
// revision store; they are never resolved against a real filesystem, which is
// why rejection here is a hard stop and never coerced into something usable.
package sitepath

import (
	"fmt"
	"path"
	"strings"

	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
)

// Kind selects the permitted extension set for normalization.
type Kind int

const (
	// KindDocument permits document extensions (.html, .htm).
	KindDocument Kind = iota
	// KindComponent permits component-source extensions (.tsx, .ts, .jsx, .js, .css).
	KindComponent
)

var documentExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

var componentExtensions = map[string]bool{
	".tsx": true,
	".ts":  true,
	".jsx": true,
	".js":  true,
	".css": true,
}

// Normalize canonicalizes a caller-supplied relative path. Rules, in order:
// trim, backslashes to forward slashes, collapse duplicate slashes, strip a
// leading "./", then reject absolute paths, NUL bytes, ".." segments, empty
// segments, and extensions outside the permitted set for the kind.
func Normalize(raw string, kind Kind) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidDestination)
	}
	if strings.ContainsRune(p, '\x00') {
		return "", fmt.Errorf("%w: path contains NUL byte", domain.ErrInvalidDestination)
	}

	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	p = strings.TrimPrefix(p, "./")

	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: absolute path %q", domain.ErrInvalidDestination, raw)
	}

	for _, segment := range strings.Split(p, "/") {
		if segment == "" {
			return "", fmt.Errorf("%w: empty path segment in %q", domain.ErrInvalidDestination, raw)
		}
		if segment == ".." {
			return "", fmt.Errorf("%w: path traversal in %q", domain.ErrInvalidDestination, raw)
		}
	}

	ext := strings.ToLower(path.Ext(p))
	permitted := componentExtensions
	if kind == KindDocument {
		permitted = documentExtensions
	}
	if !permitted[ext] {
		return "", fmt.Errorf("%w: extension %q not permitted", domain.ErrInvalidDestination, ext)
	}

	return p, nil
}

// KindForExtension infers the normalization kind from the raw path's
// extension. The boolean is false when the extension belongs to neither set.
func KindForExtension(raw string) (Kind, bool) {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(raw)))
	switch {
	case documentExtensions[ext]:
		return KindDocument, true
	case componentExtensions[ext]:
		return KindComponent, true
	default:
		return KindComponent, false
	}
}

// FindEntry locates the entry file named name within a revision snapshot.
// A root-level entry wins outright; otherwise any path whose basename matches
// qualifies, the shallowest one first and lexicographic order breaking depth
// ties, so selection stays deterministic across snapshots.
func FindEntry(snapshot map[string]string, name string) (string, bool) {
	if _, ok := snapshot[name]; ok {
		return name, true
	}

	best := ""
	bestDepth := -1
	for p := range snapshot {
		if path.Base(p) != name {
			continue
		}
		depth := strings.Count(p, "/")
		if bestDepth == -1 || depth < bestDepth || (depth == bestDepth && p < best) {
			best, bestDepth = p, depth
		}
	}
	return best, bestDepth != -1
}

// Classify tags a normalized path with its role by prefix convention:
// an index entry file is the layout, anything under a "pages" namespace is a
// page, anything under "sections" is a section, the rest is other.
func Classify(normalized string) models.FileRole {
	base := path.Base(normalized)
	if name := strings.TrimSuffix(base, path.Ext(base)); name == "index" {
		return models.RoleLayout
	}

	for _, segment := range strings.Split(path.Dir(normalized), "/") {
		switch segment {
		case "pages":
			return models.RolePage
		case "sections":
			return models.RoleSection
		}
	}

	return models.RoleOther
}
