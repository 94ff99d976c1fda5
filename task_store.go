// task_store.go implements the thread-safe, in-memory collection of fixup
// tasks.
//
// The typing UI creates tasks through the store (it is the TaskFactory),
// the streamer reports progress on them, and the MCP tool handlers read and
// cancel them. State is ephemeral and lives only as long as the process.
package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when an id is not in the store.
var ErrTaskNotFound = errors.New("task not found")

// FixupStore holds all tasks in memory, protected by a mutex. Tasks are
// stored in a map for O(1) lookup and a separate slice to preserve insertion
// order for stable iteration in List/Summary.
//
// Lock order: store mutex first, then a task's own mutex.
type FixupStore struct {
	mu      sync.Mutex
	tasks   map[string]*FixupTask
	order   []string                      // insertion order for stable iteration
	cancels map[string]context.CancelFunc // aborts an in-flight model call

	newID IDGenerator
	diff  DiffFunc
	now   func() time.Time
}

// StoreOption customises NewFixupStore.
type StoreOption func(*FixupStore)

// WithStoreIDGenerator sets the id generator used by CreateTask.
func WithStoreIDGenerator(gen IDGenerator) StoreOption {
	return func(s *FixupStore) { s.newID = gen }
}

// WithDiffFunc sets the function Recompute uses.
func WithDiffFunc(fn DiffFunc) StoreOption {
	return func(s *FixupStore) { s.diff = fn }
}

// WithStoreClock sets the time source for tasks created by the store.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *FixupStore) { s.now = now }
}

// NewFixupStore creates an empty store.
func NewFixupStore(opts ...StoreOption) *FixupStore {
	s := &FixupStore{
		tasks:   make(map[string]*FixupTask),
		cancels: make(map[string]context.CancelFunc),
		newID:   uuid.NewString,
		diff:    ComputeDiff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask builds a waiting task for the selection and adds it to the
// store. The selected text becomes the task's original.
func (s *FixupStore) CreateTask(file *FixupFile, instruction, selectedText string, rng Range) *FixupTask {
	t := NewFixupTask(file, instruction, selectedText, rng, WithIDGenerator(s.newID), WithClock(s.now))
	s.Add([]*FixupTask{t})
	return t
}

// Add inserts tasks into the store.
func (s *FixupStore) Add(tasks []*FixupTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if _, exists := s.tasks[t.ID()]; !exists {
			s.order = append(s.order, t.ID())
		}
		s.tasks[t.ID()] = t
	}
}

// Get returns a single task by ID, or nil if not found.
func (s *FixupStore) Get(id string) *FixupTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

// List returns tasks matching the filter criteria, in insertion order.
//   - If ids is non-empty, only tasks with those IDs are included.
//   - If path is non-empty, only tasks editing that file are included.
//   - Both filters can be combined (AND logic).
func (s *FixupStore) List(ids []string, path string) []*FixupTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ids, path)
}

func (s *FixupStore) listLocked(ids []string, path string) []*FixupTask {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	var result []*FixupTask
	for _, id := range s.order {
		t := s.tasks[id]
		if len(idSet) > 0 && !idSet[id] {
			continue
		}
		if path != "" && (t.File() == nil || t.File().Path != path) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// Summary returns aggregate counts per state and a per-task status line for
// the check_fixups tool. No replacement text is included.
func (s *FixupStore) Summary(ids []string, path string) (FixupSummary, []FixupStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := FixupSummary{ByState: make(map[TaskState]int, len(allStates))}
	var statuses []FixupStatus
	now := s.now()

	for _, t := range s.listLocked(ids, path) {
		snap := t.Snapshot()
		summary.Total++
		summary.ByState[snap.State]++
		statuses = append(statuses, FixupStatus{
			ID:             snap.ID,
			File:           snap.Path,
			State:          snap.State,
			Error:          snap.Error,
			ElapsedSeconds: taskElapsedSeconds(snap, now),
		})
	}
	return summary, statuses
}

// taskElapsedSeconds computes wall-clock seconds for a task based on its state.
//   - waiting: seconds since created (queue wait time)
//   - asking: seconds since the model call started
//   - finished states: seconds from start to completion, 0 if it never started
func taskElapsedSeconds(snap TaskSnapshot, now time.Time) int {
	switch snap.State {
	case StateWaiting:
		return int(now.Sub(snap.CreatedAt).Seconds())
	case StateAsking:
		return int(now.Sub(snap.StartedAt).Seconds())
	}
	if snap.StartedAt.IsZero() || snap.CompletedAt.IsZero() {
		return 0
	}
	return int(snap.CompletedAt.Sub(snap.StartedAt).Seconds())
}

// Results returns the full content for specific task IDs. Used by
// get_fixup_result. Unknown IDs yield a "not_found" entry.
func (s *FixupStore) Results(ids []string) []FixupResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]FixupResult, 0, len(ids))
	for _, id := range ids {
		t, ok := s.tasks[id]
		if !ok {
			results = append(results, FixupResult{
				ID:    id,
				State: "not_found",
				Error: ErrTaskNotFound.Error(),
			})
			continue
		}
		snap := t.Snapshot()
		r := FixupResult{
			ID:          snap.ID,
			File:        snap.Path,
			Instruction: snap.Instruction,
			State:       snap.State,
			Range:       snap.SelectionRange,
			Error:       snap.Error,
		}
		if snap.Replacement != nil {
			r.Replacement = *snap.Replacement
		} else if snap.InProgress != nil {
			r.Replacement = *snap.InProgress
			r.Partial = true
		}
		if snap.Diff != nil {
			r.Patch = snap.Diff.Patch
			r.AddedLines = snap.Diff.Added
			r.DeletedLines = snap.Diff.Deleted
		}
		results = append(results, r)
	}
	return results
}

// Recompute refreshes the cached diff of a task from its latest text and
// returns it.
func (s *FixupStore) Recompute(id string) (*Diff, error) {
	t := s.Get(id)
	if t == nil {
		return nil, fmt.Errorf("recompute diff for %s: %w", id, ErrTaskNotFound)
	}
	return recomputeDiff(t, s.diff), nil
}

// SetCancelFunc registers the function that aborts the task's model call.
// Returns false if the task is not in the store.
func (s *FixupStore) SetCancelFunc(id string, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	s.cancels[id] = cancel
	return true
}

// ClearCancelFunc drops the cancel function once the model call is over.
func (s *FixupStore) ClearCancelFunc(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, id)
}

// Remove deletes a task without touching its model call.
func (s *FixupStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *FixupStore) removeLocked(id string) bool {
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	delete(s.cancels, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Cancel aborts and removes every matching task whose edit has not reached
// the file, and returns the count. Applying and applied tasks are left in
// place. If both ids and path are empty, all such tasks are cancelled.
func (s *FixupStore) Cancel(ids []string, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.listLocked(ids, path) {
		switch t.State() {
		case StateApplying, StateApplied:
			continue
		}
		if cancel := s.cancels[t.ID()]; cancel != nil {
			cancel()
		}
		if s.removeLocked(t.ID()) {
			count++
		}
	}
	return count
}
