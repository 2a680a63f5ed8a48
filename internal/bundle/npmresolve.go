package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// packageMetadata is the subset of package.json consulted during manual
// resolution.
type packageMetadata struct {
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Exports json.RawMessage `json:"exports"`
}

// ResolvePackage locates the entry file of an installed package under
// nodeModulesDir by package-metadata inspection: the export map first, then
// the module entry, then main, then index.js. Used when browser builds
// should reuse the host's installed runtime copies; callers fall back to the
// embedded shims when this fails.
func ResolvePackage(nodeModulesDir, name string) (string, error) {
	// Subpath imports like react-dom/client resolve through the parent
	// package's export map.
	pkgName := name
	subpath := "."
	if idx := strings.Index(name, "/"); idx > 0 && !strings.HasPrefix(name, "@") {
		pkgName = name[:idx]
		subpath = "./" + name[idx+1:]
	}

	pkgDir := filepath.Join(nodeModulesDir, filepath.FromSlash(pkgName))
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return "", fmt.Errorf("read package metadata for %s: %w", name, err)
	}

	var meta packageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("parse package metadata for %s: %w", name, err)
	}

	if rel, ok := lookupExport(meta.Exports, subpath); ok {
		return verifyEntry(pkgDir, rel)
	}
	if subpath != "." {
		// No export map entry; try the conventional file layout.
		return verifyEntry(pkgDir, subpath+".js")
	}
	if meta.Module != "" {
		if entry, err := verifyEntry(pkgDir, meta.Module); err == nil {
			return entry, nil
		}
	}
	if meta.Main != "" {
		if entry, err := verifyEntry(pkgDir, meta.Main); err == nil {
			return entry, nil
		}
	}
	return verifyEntry(pkgDir, "index.js")
}

// lookupExport walks the package export map for the given subpath. Handles
// the common shapes: a bare string, a subpath map, and conditional targets
// (browser/import/module/default preferred in that order).
func lookupExport(raw json.RawMessage, subpath string) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if subpath == "." {
			return str, true
		}
		return "", false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	// Subpath map when keys start with "."; otherwise the object is a
	// condition map for the root export.
	isSubpathMap := false
	for key := range obj {
		if strings.HasPrefix(key, ".") {
			isSubpathMap = true
			break
		}
	}

	if isSubpathMap {
		target, ok := obj[subpath]
		if !ok {
			return "", false
		}
		return resolveExportTarget(target)
	}

	if subpath != "." {
		return "", false
	}
	return resolveExportTarget(raw)
}

func resolveExportTarget(raw json.RawMessage) (string, bool) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, true
	}

	var conditions map[string]json.RawMessage
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return "", false
	}
	for _, condition := range []string{"browser", "import", "module", "default"} {
		if target, ok := conditions[condition]; ok {
			return resolveExportTarget(target)
		}
	}
	return "", false
}

func verifyEntry(pkgDir, rel string) (string, error) {
	entry := filepath.Join(pkgDir, filepath.FromSlash(strings.TrimPrefix(rel, "./")))
	if _, err := os.Stat(entry); err != nil {
		return "", fmt.Errorf("package entry %s: %w", entry, err)
	}
	return entry, nil
}
