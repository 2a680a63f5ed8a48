package bundle

import (
	"os"
	"path/filepath"
	"testing"
)

// writePackage lays out node_modules/<name>/package.json plus the given files.
func writePackage(t *testing.T, root, name, metadata string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(metadata), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("// module"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolvePackage(t *testing.T) {
	root := t.TempDir()

	writePackage(t, root, "exportmap",
		`{"exports": {".": {"browser": "./dist/browser.js", "default": "./dist/node.js"}, "./client": "./dist/client.js"}}`,
		"dist/browser.js", "dist/node.js", "dist/client.js")
	writePackage(t, root, "stringexport",
		`{"exports": "./lib/entry.js"}`,
		"lib/entry.js")
	writePackage(t, root, "modulefield",
		`{"module": "./esm/index.js", "main": "./cjs/index.js"}`,
		"esm/index.js", "cjs/index.js")
	writePackage(t, root, "mainonly",
		`{"main": "lib/main.js"}`,
		"lib/main.js")
	writePackage(t, root, "bare",
		`{}`,
		"index.js")

	tests := []struct {
		name    string
		pkg     string
		want    string // relative to root
		wantErr bool
	}{
		{
			name: "export map prefers browser condition",
			pkg:  "exportmap",
			want: "exportmap/dist/browser.js",
		},
		{
			name: "subpath export",
			pkg:  "exportmap/client",
			want: "exportmap/dist/client.js",
		},
		{
			name: "bare string export",
			pkg:  "stringexport",
			want: "stringexport/lib/entry.js",
		},
		{
			name: "module field beats main",
			pkg:  "modulefield",
			want: "modulefield/esm/index.js",
		},
		{
			name: "main fallback",
			pkg:  "mainonly",
			want: "mainonly/lib/main.js",
		},
		{
			name: "index.js fallback",
			pkg:  "bare",
			want: "bare/index.js",
		},
		{
			name:    "missing package",
			pkg:     "absent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePackage(root, tt.pkg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolvePackage(%q) = %q, want error", tt.pkg, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePackage(%q): %v", tt.pkg, err)
			}
			if want := filepath.Join(root, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("ResolvePackage(%q) = %q, want %q", tt.pkg, got, want)
			}
		})
	}
}
