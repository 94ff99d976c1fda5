package main

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestTask() *FixupTask {
	rng := Range{Start: Position{Line: 1}, End: Position{Line: 3}}
	return NewFixupTask(&FixupFile{Path: "main.go"}, "make this async", "func f() {}\n", rng)
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewTaskStartsWaiting(t *testing.T) {
	task := newTestTask()
	if task.State() != StateWaiting {
		t.Fatalf("expected waiting, got %s", task.State())
	}
	if task.ID() == "" {
		t.Fatal("expected an id")
	}
	if _, ok := task.Replacement(); ok {
		t.Fatal("replacement should be absent")
	}
	if _, ok := task.InProgressReplacement(); ok {
		t.Fatal("in-progress replacement should be absent")
	}
	if task.Diff() != nil {
		t.Fatal("diff should be nil")
	}
}

func TestTaskIDsDistinctInRapidSuccession(t *testing.T) {
	const n = 10000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := newTestTask().ID()
		if seen[id] {
			t.Fatalf("duplicate id %s after %d tasks", id, i)
		}
		seen[id] = true
	}
}

func TestTaskIDsDistinctWithFrozenClock(t *testing.T) {
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return frozen }
	a := NewFixupTask(nil, "x", "y", Range{}, WithClock(clock))
	b := NewFixupTask(nil, "x", "y", Range{}, WithClock(clock))
	if a.ID() == b.ID() {
		t.Fatal("ids must not depend on the clock")
	}
}

func TestInjectedIDGenerator(t *testing.T) {
	var n atomic.Int64
	gen := func() string { return "fix-" + strconv.FormatInt(n.Add(1), 10) }
	a := NewFixupTask(nil, "x", "y", Range{}, WithIDGenerator(gen))
	b := NewFixupTask(nil, "x", "y", Range{}, WithIDGenerator(gen))
	if a.ID() != "fix-1" || b.ID() != "fix-2" {
		t.Fatalf("unexpected ids %s, %s", a.ID(), b.ID())
	}
}

func TestInstructionAndOriginalStable(t *testing.T) {
	task := newTestTask()
	task.SetInProgressReplacement("partial")
	_ = task.SetReplacement("done")
	task.SetSelectionRange(Range{End: Position{Line: 9}})
	_ = task.TrySetState(StateError)

	for i := 0; i < 3; i++ {
		if task.Instruction() != "make this async" {
			t.Fatalf("instruction changed: %q", task.Instruction())
		}
		if task.Original() != "func f() {}\n" {
			t.Fatalf("original changed: %q", task.Original())
		}
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

func TestAnyTransitionFromNonErrorSucceeds(t *testing.T) {
	for _, from := range allStates {
		if from == StateError {
			continue
		}
		for _, to := range allStates {
			task := newTestTask()
			if err := task.TrySetState(from); err != nil {
				t.Fatalf("setup %s: %v", from, err)
			}
			if err := task.TrySetState(to); err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", from, to, err)
			}
			if task.State() != to {
				t.Fatalf("%s -> %s: read back %s", from, to, task.State())
			}
		}
	}
}

func TestErrorIsAbsorbing(t *testing.T) {
	for _, to := range allStates {
		task := newTestTask()
		if err := task.TrySetState(StateError); err != nil {
			t.Fatalf("entering error: %v", err)
		}
		err := task.TrySetState(to)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("error -> %s: expected ErrInvalidTransition, got %v", to, err)
		}
		if task.State() != StateError {
			t.Fatalf("state left error: %s", task.State())
		}
	}
}

func TestFailRecordsMessage(t *testing.T) {
	task := newTestTask()
	if err := task.Fail("boom"); err != nil {
		t.Fatal(err)
	}
	if task.State() != StateError || task.Err() != "boom" {
		t.Fatalf("unexpected state=%s err=%q", task.State(), task.Err())
	}
	if err := task.Fail("again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Fail: expected ErrInvalidTransition, got %v", err)
	}
	if task.Err() != "boom" {
		t.Fatalf("first error message should be kept, got %q", task.Err())
	}
}

func TestTimestampsFollowState(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	task := NewFixupTask(nil, "x", "y", Range{}, WithClock(clock))

	now = now.Add(2 * time.Second)
	_ = task.TrySetState(StateAsking)
	now = now.Add(3 * time.Second)
	_ = task.TrySetState(StateReady)

	snap := task.Snapshot()
	if got := snap.CompletedAt.Sub(snap.StartedAt); got != 3*time.Second {
		t.Fatalf("expected 3s of work, got %s", got)
	}
	if got := snap.StartedAt.Sub(snap.CreatedAt); got != 2*time.Second {
		t.Fatalf("expected 2s of waiting, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// Replacement and diff fields
// ---------------------------------------------------------------------------

func TestReplacementSetOnce(t *testing.T) {
	task := newTestTask()
	if err := task.SetReplacement("one"); err != nil {
		t.Fatal(err)
	}
	if err := task.SetReplacement("two"); !errors.Is(err, ErrReplacementFinal) {
		t.Fatalf("expected ErrReplacementFinal, got %v", err)
	}
	if got, _ := task.Replacement(); got != "one" {
		t.Fatalf("replacement overwritten: %q", got)
	}
}

func TestInProgressOverwritten(t *testing.T) {
	task := newTestTask()
	task.SetInProgressReplacement("fu")
	task.SetInProgressReplacement("func")
	if got, ok := task.InProgressReplacement(); !ok || got != "func" {
		t.Fatalf("expected latest chunk, got %q", got)
	}
	if got, _ := task.LatestText(); got != "func" {
		t.Fatalf("LatestText should fall back to in-progress, got %q", got)
	}
	_ = task.SetReplacement("func g() {}")
	if got, _ := task.LatestText(); got != "func g() {}" {
		t.Fatalf("LatestText should prefer replacement, got %q", got)
	}
}

func TestDiffIsNotRecomputedAutomatically(t *testing.T) {
	task := newTestTask()
	stale := ComputeDiff(task.Original(), "first\n")
	task.SetDiff(stale)
	task.SetInProgressReplacement("second\n")
	if task.Diff() != stale {
		t.Fatal("diff should stay as stored until recomputed")
	}
}

// ---------------------------------------------------------------------------
// Concurrent access (designed to catch races with -race flag)
// ---------------------------------------------------------------------------

func TestConcurrentStateWritersNeverEscapeError(t *testing.T) {
	task := newTestTask()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = task.TrySetState(StateAsking)
		}()
		go func() {
			defer wg.Done()
			_ = task.Fail("cancelled")
		}()
		go func() {
			defer wg.Done()
			task.SetInProgressReplacement("x")
			_ = task.State()
		}()
	}
	wg.Wait()

	if task.State() != StateError {
		t.Fatalf("expected error after concurrent Fail, got %s", task.State())
	}
	if err := task.TrySetState(StateReady); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
