package site

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"sunset/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllocateSequential(t *testing.T) {
	store := memory.NewStore()
	allocator := NewRevisionAllocator(store.Revisions(), testLogger())

	for want := 1; want <= 3; want++ {
		rev, err := allocator.Allocate(context.Background(), "proj", "user")
		if err != nil {
			t.Fatalf("Allocate %d: %v", want, err)
		}
		if rev.RevisionNumber != want {
			t.Errorf("RevisionNumber = %d, want %d", rev.RevisionNumber, want)
		}
		if rev.ID == "" {
			t.Error("revision ID not assigned")
		}
	}
}

func TestAllocateConcurrent(t *testing.T) {
	store := memory.NewStore()
	allocator := NewRevisionAllocator(store.Revisions(), testLogger())

	const writers = 4

	var wg sync.WaitGroup
	numbers := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rev, err := allocator.Allocate(context.Background(), "proj", "user")
			if err != nil {
				t.Errorf("concurrent Allocate: %v", err)
				return
			}
			numbers <- rev.RevisionNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for n := range numbers {
		if seen[n] {
			t.Errorf("revision number %d allocated twice", n)
		}
		seen[n] = true
	}
	for want := 1; want <= writers; want++ {
		if !seen[want] {
			t.Errorf("revision number %d never allocated (got %v)", want, seen)
		}
	}
}

func TestAllocateIndependentProjects(t *testing.T) {
	store := memory.NewStore()
	allocator := NewRevisionAllocator(store.Revisions(), testLogger())

	for _, projectID := range []string{"a", "b"} {
		rev, err := allocator.Allocate(context.Background(), projectID, "user")
		if err != nil {
			t.Fatalf("Allocate %s: %v", projectID, err)
		}
		if rev.RevisionNumber != 1 {
			t.Errorf("project %s first revision = %d, want 1", projectID, rev.RevisionNumber)
		}
	}
}
