package ratelimit

import (
	"testing"
	"time"
)

func TestCheckWindowBehavior(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(3, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	// First three calls admitted with a shrinking remainder.
	for i := 0; i < 3; i++ {
		res := l.Check("user-a")
		if !res.Allowed {
			t.Fatalf("call %d rejected, want allowed", i+1)
		}
		if want := 3 - (i + 1); res.Remaining != want {
			t.Errorf("call %d remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	// Fourth call inside the window is rejected and reports the reset time.
	res := l.Check("user-a")
	if res.Allowed {
		t.Fatal("call over the cap admitted")
	}
	if res.Remaining != 0 {
		t.Errorf("rejected remaining = %d, want 0", res.Remaining)
	}
	if want := now.Add(time.Minute).UnixMilli(); res.ResetEpochMS != want {
		t.Errorf("reset = %d, want %d", res.ResetEpochMS, want)
	}

	// Another user has an independent window.
	if res := l.Check("user-b"); !res.Allowed {
		t.Error("independent user rejected")
	}

	// After the window expires the count resets.
	now = now.Add(time.Minute + time.Second)
	res = l.Check("user-a")
	if !res.Allowed {
		t.Fatal("call after window expiry rejected")
	}
	if res.Remaining != 2 {
		t.Errorf("post-expiry remaining = %d, want 2", res.Remaining)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	l.Stop()
}
