package bundle

import (
	"fmt"
	"strings"
	"testing"

	"sunset/internal/config"
)

func TestDiscover(t *testing.T) {
	snapshot := map[string]string{
		"index.tsx":           `import App from "./App"; import "./styles.css";`,
		"App.tsx":             `import { Hero } from "./components/Hero"; export default () => null;`,
		"components/Hero.tsx": `import util from "../util"; export const Hero = () => null;`,
		"util.ts":             `export default 1;`,
		"styles.css":          `.hero {}`,
		"unreached.tsx":       `export const nope = 1;`,
	}

	graph := Discover("index.tsx", snapshot)

	want := []string{"index.tsx", "App.tsx", "styles.css", "components/Hero.tsx", "util.ts"}
	if len(graph.Files) != len(want) {
		t.Fatalf("Files = %v, want %v", graph.Files, want)
	}
	for _, p := range want {
		if !graph.Contains(p) {
			t.Errorf("graph missing %s", p)
		}
	}
	if graph.Contains("unreached.tsx") {
		t.Error("unreferenced file must not join the graph")
	}
	if graph.Files[0] != "index.tsx" {
		t.Errorf("entry not first: %v", graph.Files)
	}
	if len(graph.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", graph.Warnings)
	}
}

func TestDiscoverUnresolvedImport(t *testing.T) {
	snapshot := map[string]string{
		"index.tsx": `import missing from "./gone"; import React from "react";`,
	}

	graph := Discover("index.tsx", snapshot)

	if len(graph.Files) != 1 {
		t.Fatalf("Files = %v, want entry only", graph.Files)
	}
	// Bare package specifiers are not graph edges; only the relative miss warns.
	if len(graph.Warnings) != 1 || !strings.Contains(graph.Warnings[0], `"./gone"`) {
		t.Errorf("warnings = %v, want one unresolved ./gone", graph.Warnings)
	}
}

func TestDiscoverCycleSafe(t *testing.T) {
	snapshot := map[string]string{
		"a.tsx": `import "./b";`,
		"b.tsx": `import "./a";`,
	}

	graph := Discover("a.tsx", snapshot)

	if len(graph.Files) != 2 {
		t.Fatalf("Files = %v, want both cycle members once", graph.Files)
	}
}

func TestDiscoverFileCap(t *testing.T) {
	// A wide fan-out: the entry references 60 modules directly.
	var b strings.Builder
	snapshot := make(map[string]string)
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, `import "./m%d";`, i)
		snapshot[fmt.Sprintf("m%d.ts", i)] = "export {};"
	}
	snapshot["index.ts"] = b.String()

	graph := Discover("index.ts", snapshot)

	// Truncation stops admission but never discards admitted files: the
	// graph carries exactly the full budget.
	if len(graph.Files) != config.MaxGraphFiles {
		t.Fatalf("graph has %d files, want %d", len(graph.Files), config.MaxGraphFiles)
	}
	truncated := 0
	for _, w := range graph.Warnings {
		if strings.Contains(w, "truncated") {
			truncated++
		}
	}
	if truncated != 1 {
		t.Errorf("truncation warnings = %d, want exactly one: %v", truncated, graph.Warnings)
	}
}

func TestDiscoverDepthCap(t *testing.T) {
	snapshot := make(map[string]string)
	for i := 0; i < 15; i++ {
		snapshot[fmt.Sprintf("m%d.ts", i)] = fmt.Sprintf(`import "./m%d";`, i+1)
	}

	graph := Discover("m0.ts", snapshot)

	if want := config.MaxImportDepth + 1; len(graph.Files) != want {
		t.Fatalf("chain graph has %d files, want %d", len(graph.Files), want)
	}
	if len(graph.Warnings) == 0 || !strings.Contains(graph.Warnings[0], "depth cap") {
		t.Errorf("warnings = %v, want depth cap notice", graph.Warnings)
	}
}

func TestResolveSpecifier(t *testing.T) {
	snapshot := map[string]string{
		"index.tsx":           "",
		"App.tsx":             "",
		"components/Hero.tsx": "",
		"lib/index.ts":        "",
		"styles.css":          "",
	}

	tests := []struct {
		name     string
		importer string
		spec     string
		want     string
		wantOK   bool
	}{
		{
			name:     "extension inferred",
			importer: "index.tsx",
			spec:     "./App",
			want:     "App.tsx",
			wantOK:   true,
		},
		{
			name:     "exact match with extension",
			importer: "index.tsx",
			spec:     "./styles.css",
			want:     "styles.css",
			wantOK:   true,
		},
		{
			name:     "directory index",
			importer: "index.tsx",
			spec:     "./lib",
			want:     "lib/index.ts",
			wantOK:   true,
		},
		{
			name:     "parent-relative from nested importer",
			importer: "components/Hero.tsx",
			spec:     "../App",
			want:     "App.tsx",
			wantOK:   true,
		},
		{
			name:     "case-insensitive fallback",
			importer: "index.tsx",
			spec:     "./components/hero",
			want:     "components/Hero.tsx",
			wantOK:   true,
		},
		{
			name:     "escaping the root never resolves",
			importer: "index.tsx",
			spec:     "../App",
			wantOK:   false,
		},
		{
			name:     "unknown module",
			importer: "index.tsx",
			spec:     "./nothing",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveSpecifier(tt.importer, tt.spec, snapshot)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if ok && got != tt.want {
				t.Errorf("resolved %q, want %q", got, tt.want)
			}
		})
	}
}
