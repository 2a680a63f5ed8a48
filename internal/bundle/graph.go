// Package bundle compiles a set of independently generated component-source
// files into renderable artifacts. Graph discovery is purely textual: no
// project code is executed and no filesystem is consulted; module content
// comes from an in-memory snapshot of one pinned revision.
package bundle

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"sunset/internal/config"
)

// Conservative pattern matches for relative import specifiers. Static
// imports/re-exports, side-effect imports, dynamic import() and require().
var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)(?:^|;)\s*(?:import|export)\s+[^'";]*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?m)(?:^|;)\s*import\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`),
}

var inferExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Graph is the set of files reachable from an entry via relative import
// specifiers, bounded by depth and size caps.
type Graph struct {
	Entry    string
	Files    []string // canonical snapshot paths, breadth-first, entry first
	Warnings []string // dropped specifiers and cap truncations
}

// Contains reports whether the graph includes the canonical path.
func (g *Graph) Contains(p string) bool {
	for _, f := range g.Files {
		if f == p {
			return true
		}
	}
	return false
}

// Discover scans each reachable file's source for relative import
// specifiers, breadth-first from entry, resolving them against the snapshot
// key set. Specifiers that cannot be matched are dropped from the graph with
// a warning rather than failing the build, so partial builds still render.
func Discover(entry string, snapshot map[string]string) *Graph {
	graph := &Graph{Entry: entry}

	type visit struct {
		path  string
		depth int
	}

	seen := map[string]bool{entry: true}
	queue := []visit{{entry, 0}}
	truncated := false

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		source, ok := snapshot[current.path]
		if !ok {
			continue
		}
		graph.Files = append(graph.Files, current.path)

		if current.depth >= config.MaxImportDepth {
			graph.Warnings = append(graph.Warnings,
				fmt.Sprintf("import depth cap reached at %s", current.path))
			continue
		}

		for _, spec := range relativeSpecifiers(source) {
			resolved, ok := ResolveSpecifier(current.path, spec, snapshot)
			if !ok {
				graph.Warnings = append(graph.Warnings,
					fmt.Sprintf("unresolved import %q in %s", spec, current.path))
				continue
			}
			if seen[resolved] {
				continue
			}
			// At the cap nothing new is admitted, but the queue keeps
			// draining so every already-admitted file lands in the graph.
			if len(seen) >= config.MaxGraphFiles {
				if !truncated {
					truncated = true
					graph.Warnings = append(graph.Warnings,
						fmt.Sprintf("import graph truncated at %d files", config.MaxGraphFiles))
				}
				continue
			}
			seen[resolved] = true
			queue = append(queue, visit{resolved, current.depth + 1})
		}
	}

	return graph
}

// relativeSpecifiers extracts ./ and ../ specifiers in source order.
func relativeSpecifiers(source string) []string {
	var specs []string
	seen := make(map[string]bool)
	for _, pattern := range importPatterns {
		for _, m := range pattern.FindAllStringSubmatch(source, -1) {
			spec := m[1]
			if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
				continue
			}
			if seen[spec] {
				continue
			}
			seen[spec] = true
			specs = append(specs, spec)
		}
	}
	return specs
}

// ResolveSpecifier resolves a relative specifier against the importing
// file's directory and matches it to a snapshot key. Resolution order:
// exact match, inferred extension, directory index, then case-insensitive
// and extension-stripped fallbacks. A specifier escaping the project root
// never resolves.
func ResolveSpecifier(importer, spec string, snapshot map[string]string) (string, bool) {
	joined := path.Join(path.Dir(importer), spec)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}

	for _, candidate := range resolutionCandidates(joined) {
		if _, ok := snapshot[candidate]; ok {
			return candidate, true
		}
	}

	// Case-insensitive match with extension-stripped fallback. Generated
	// imports frequently disagree on casing with the stored destination.
	// Keys are visited in sorted order so resolution stays deterministic.
	lowerJoined := strings.ToLower(joined)
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == lowerJoined {
			return key, true
		}
		if strings.TrimSuffix(lowerKey, path.Ext(lowerKey)) == lowerJoined {
			return key, true
		}
	}

	return "", false
}

func resolutionCandidates(joined string) []string {
	candidates := []string{joined}
	if path.Ext(joined) == "" {
		for _, ext := range inferExtensions {
			candidates = append(candidates, joined+ext)
		}
		for _, ext := range inferExtensions {
			candidates = append(candidates, joined+"/index"+ext)
		}
	}
	return candidates
}
