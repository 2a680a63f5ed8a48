package memory

import (
	"context"
	"errors"
	"testing"

	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
)

// seedVersion writes one content version of path under a new revision with
// the given number, creating the revision and file rows as needed.
func seedVersion(t *testing.T, store *Store, projectID, path string, revNumber int, content string) {
	t.Helper()
	ctx := context.Background()

	rev := &models.Revision{ProjectID: projectID, RevisionNumber: revNumber, CreatedBy: "tester"}
	if err := store.Revisions().Create(ctx, rev); err != nil {
		t.Fatalf("create revision %d: %v", revNumber, err)
	}

	file := &models.File{ProjectID: projectID, Path: path, Role: models.RoleOther}
	if err := store.Files().Upsert(ctx, file); err != nil {
		t.Fatalf("upsert file %s: %v", path, err)
	}

	version := &models.FileVersion{FileID: file.ID, RevisionID: rev.ID, Content: content}
	if err := store.FileVersions().Create(ctx, version); err != nil {
		t.Fatalf("create version: %v", err)
	}
}

func TestContentAtOrBefore(t *testing.T) {
	store := NewStore()
	seedVersion(t, store, "proj", "index.html", 1, "v1")
	seedVersion(t, store, "proj", "index.html", 3, "v3")
	seedVersion(t, store, "proj", "index.html", 5, "v5")

	tests := []struct {
		name     string
		rev      int
		want     string
		wantNone bool
	}{
		{name: "before first version", rev: 0, wantNone: true},
		{name: "exact first", rev: 1, want: "v1"},
		{name: "between versions", rev: 2, want: "v1"},
		{name: "exact middle", rev: 3, want: "v3"},
		{name: "after middle", rev: 4, want: "v3"},
		{name: "exact last", rev: 5, want: "v5"},
		{name: "past last", rev: 9, want: "v5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, ok, err := store.FileVersions().ContentAtOrBefore(context.Background(), "proj", "index.html", tt.rev)
			if err != nil {
				t.Fatalf("ContentAtOrBefore: %v", err)
			}
			if tt.wantNone {
				if ok {
					t.Fatalf("rev %d: got %q, want none", tt.rev, content)
				}
				return
			}
			if !ok {
				t.Fatalf("rev %d: no content", tt.rev)
			}
			if content != tt.want {
				t.Errorf("rev %d: content = %q, want %q", tt.rev, content, tt.want)
			}
		})
	}
}

func TestAllAtOrBefore(t *testing.T) {
	store := NewStore()
	seedVersion(t, store, "proj", "index.tsx", 1, "entry-v1")
	seedVersion(t, store, "proj", "components/Hero.tsx", 2, "hero-v2")
	seedVersion(t, store, "proj", "index.tsx", 3, "entry-v3")

	files, err := store.FileVersions().AllAtOrBefore(context.Background(), "proj", 2)
	if err != nil {
		t.Fatalf("AllAtOrBefore: %v", err)
	}
	want := map[string]string{
		"index.tsx":           "entry-v1",
		"components/Hero.tsx": "hero-v2",
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for path, content := range want {
		if files[path] != content {
			t.Errorf("%s = %q, want %q", path, files[path], content)
		}
	}
}

func TestAllLatestExcluding(t *testing.T) {
	store := NewStore()
	seedVersion(t, store, "proj", "index.tsx", 1, "entry-v1")
	seedVersion(t, store, "proj", "components/Hero.tsx", 2, "hero-v2")
	seedVersion(t, store, "proj", "index.tsx", 3, "entry-v3")

	files, err := store.FileVersions().AllLatestExcluding(context.Background(), "proj", "components/Hero.tsx")
	if err != nil {
		t.Fatalf("AllLatestExcluding: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1: %v", len(files), files)
	}
	if files["index.tsx"] != "entry-v3" {
		t.Errorf("index.tsx = %q, want latest entry-v3", files["index.tsx"])
	}
}

func TestRevisionCreateConflict(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := &models.Revision{ProjectID: "proj", RevisionNumber: 1, CreatedBy: "a"}
	if err := store.Revisions().Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := &models.Revision{ProjectID: "proj", RevisionNumber: 1, CreatedBy: "b"}
	err := store.Revisions().Create(ctx, second)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate revision number error = %v, want ErrConflict", err)
	}

	// Same number under a different project is fine.
	other := &models.Revision{ProjectID: "other", RevisionNumber: 1, CreatedBy: "c"}
	if err := store.Revisions().Create(ctx, other); err != nil {
		t.Fatalf("cross-project create: %v", err)
	}
}

func TestMaxRevisionNumber(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	max, err := store.Revisions().MaxRevisionNumber(ctx, "proj")
	if err != nil {
		t.Fatalf("MaxRevisionNumber: %v", err)
	}
	if max != 0 {
		t.Fatalf("empty project max = %d, want 0", max)
	}

	for _, n := range []int{1, 3, 2} {
		rev := &models.Revision{ProjectID: "proj", RevisionNumber: n, CreatedBy: "a"}
		if err := store.Revisions().Create(ctx, rev); err != nil {
			t.Fatalf("create %d: %v", n, err)
		}
	}

	max, err = store.Revisions().MaxRevisionNumber(ctx, "proj")
	if err != nil {
		t.Fatalf("MaxRevisionNumber: %v", err)
	}
	if max != 3 {
		t.Errorf("max = %d, want 3", max)
	}
}
