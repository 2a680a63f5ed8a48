package site

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sunset/internal/bundle"
	"sunset/internal/compose"
	"sunset/internal/config"
	"sunset/internal/domain"
	siteSvc "sunset/internal/domain/services/site"
	"sunset/internal/render"
	"sunset/internal/repository/memory"
)

func newPipelineFixture(t *testing.T) (siteSvc.GenerationService, siteSvc.ComposeService) {
	t.Helper()

	stack, err := config.LoadStackConfig("")
	if err != nil {
		t.Fatalf("LoadStackConfig: %v", err)
	}

	store := memory.NewStore()
	logger := testLogger()

	allocator := NewRevisionAllocator(store.Revisions(), logger)
	generation := NewGenerationService(allocator, store.Projects(), store.Files(), store.FileVersions(), store, logger)

	builder := bundle.NewBuilder(stack, "", logger)
	sandbox := render.NewSandbox(false, logger)
	bundler := compose.NewBundleComposer(store.FileVersions(), builder, sandbox, stack, logger)
	includes := compose.NewHTMLComposer(store.FileVersions(), stack, logger)
	composer := NewComposeService(bundler, includes, store.Revisions(), logger)

	return generation, composer
}

func generateStep(t *testing.T, svc siteSvc.GenerationService, path, content string) *siteSvc.GenerateResult {
	t.Helper()
	result, err := svc.Generate(context.Background(), &siteSvc.GenerateRequest{
		ProjectID: "proj",
		UserID:    "user",
		Path:      path,
		Content:   content,
	})
	if err != nil {
		t.Fatalf("Generate %s: %v", path, err)
	}
	return result
}

func TestGenerateAndComposeComponents(t *testing.T) {
	generation, composer := newPipelineFixture(t)
	ctx := context.Background()

	hero := generateStep(t, generation, "components/Hero.tsx",
		"export function Hero() {\n"+
			"  return <section className=\"hero\"><h1>Launch faster</h1></section>;\n"+
			"}\n")
	if hero.RevisionNumber != 1 {
		t.Fatalf("hero revision = %d, want 1", hero.RevisionNumber)
	}

	entry := generateStep(t, generation, "index.tsx",
		"import { Hero } from \"./components/Hero\";\n"+
			"\n"+
			"export default function Page() {\n"+
			"  return (\n"+
			"    <main>\n"+
			"      <Hero />\n"+
			"    </main>\n"+
			"  );\n"+
			"}\n")
	if entry.RevisionNumber != 2 {
		t.Fatalf("entry revision = %d, want 2", entry.RevisionNumber)
	}

	// Latest revision renders the component tree to a full document.
	artifact, err := composer.Page(ctx, "proj", 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Launch faster", "<main>"} {
		if !strings.Contains(artifact.HTML, want) {
			t.Errorf("document missing %q:\n%s", want, artifact.HTML)
		}
	}

	// Revision 1 has no entry component yet and no document either.
	if _, err := composer.Page(ctx, "proj", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("revision 1 error = %v, want ErrNotFound", err)
	}

	// The browser module is a self-contained script with the component code.
	script, warnings, err := composer.BrowserModule(ctx, "proj", 0)
	if err != nil {
		t.Fatalf("BrowserModule: %v", err)
	}
	if script == "" {
		t.Fatal("empty browser module")
	}
	if !strings.Contains(script, "Launch faster") {
		t.Error("browser module does not inline the component content")
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestComposeNestedComponentEntry(t *testing.T) {
	generation, composer := newPipelineFixture(t)
	ctx := context.Background()

	generateStep(t, generation, "landing/sections/Hero.tsx",
		"export function Hero() {\n"+
			"  return <section><h1>Nested launch</h1></section>;\n"+
			"}\n")
	generateStep(t, generation, "landing/index.tsx",
		"import { Hero } from \"./sections/Hero\";\n"+
			"\n"+
			"export default function Page() {\n"+
			"  return <main><Hero /></main>;\n"+
			"}\n")

	// The entry lives under a subdirectory; composition still finds it.
	artifact, err := composer.Page(ctx, "proj", 2)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Nested launch"} {
		if !strings.Contains(artifact.HTML, want) {
			t.Errorf("document missing %q:\n%s", want, artifact.HTML)
		}
	}

	script, _, err := composer.BrowserModule(ctx, "proj", 0)
	if err != nil {
		t.Fatalf("BrowserModule: %v", err)
	}
	if !strings.Contains(script, "Nested launch") {
		t.Error("browser module does not inline the nested component content")
	}
}

func TestComposeFallsBackToIncludeEngine(t *testing.T) {
	generation, composer := newPipelineFixture(t)
	ctx := context.Background()

	generateStep(t, generation, "sections/hero.html", "<section>HERO</section>")
	generateStep(t, generation, "index.html",
		"<html><head></head><body><!-- include:sections/hero.html --></body></html>")

	artifact, err := composer.Page(ctx, "proj", 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(artifact.HTML, "<section>HERO</section>") {
		t.Errorf("include not resolved:\n%s", artifact.HTML)
	}

	// No component entry means no browser module for this project.
	if _, _, err := composer.BrowserModule(ctx, "proj", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("BrowserModule error = %v, want ErrNotFound", err)
	}
}

func TestComposeDroppedImportDegrades(t *testing.T) {
	generation, composer := newPipelineFixture(t)
	ctx := context.Background()

	generateStep(t, generation, "index.tsx",
		"import { Gone } from \"./missing\";\n"+
			"\n"+
			"export default function Page() {\n"+
			"  return <main><h1>Still here</h1></main>;\n"+
			"}\n")

	artifact, err := composer.Page(ctx, "proj", 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(artifact.HTML, "Still here") {
		t.Errorf("degraded build did not render:\n%s", artifact.HTML)
	}
	if len(artifact.Warnings) == 0 {
		t.Error("dropped import produced no warning")
	}
}

func TestComposeEmptyProject(t *testing.T) {
	_, composer := newPipelineFixture(t)

	if _, err := composer.Page(context.Background(), "proj", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Page error = %v, want ErrNotFound", err)
	}
}
