// task.go defines the fixup task: one request to have the model rewrite a
// selected range of a file. The store, the streamer and the apply step all
// mutate tasks through the methods here.
package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a FixupTask.
//
// Lifecycle: waiting -> asking -> ready -> applying -> applied
//
//	any state -> error (absorbing; nothing leaves it)
type TaskState string

const (
	StateWaiting  TaskState = "waiting"  // instruction received, no model output yet
	StateAsking   TaskState = "asking"   // model output is streaming in
	StateReady    TaskState = "ready"    // replacement is final, not yet written
	StateApplying TaskState = "applying" // replacement is being written to the file
	StateApplied  TaskState = "applied"
	StateError    TaskState = "error"
)

// allStates lists every state in lifecycle order.
var allStates = []TaskState{StateWaiting, StateAsking, StateReady, StateApplying, StateApplied, StateError}

var (
	// ErrInvalidTransition is returned when a state change is attempted on a
	// task that is already in StateError. It signals a bug in whatever is
	// driving the task, not a user-facing condition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrReplacementFinal is returned when a finished replacement is set a
	// second time. Re-generation needs a new task.
	ErrReplacementFinal = errors.New("replacement already final")
)

// Position is a zero-based line and byte column within a file.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span [Start, End) in a file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// FixupFile identifies the file a task edits. Tasks only refer to it.
type FixupFile struct {
	Path string
}

// IDGenerator produces task ids. Implementations must never repeat an id
// within a process, however fast tasks are created.
type IDGenerator func() string

// FixupTask is one in-flight or finished edit request.
//
// ID, File, Instruction and Original never change after construction. The
// remaining fields are guarded by mu so concurrent writers (stream handler,
// cancel handler, document tracking) each see whole values. There is no
// compound update: setting a replacement does not refresh Diff, which stays
// whatever was last stored with SetDiff until someone recomputes it.
type FixupTask struct {
	id          string
	file        *FixupFile
	instruction string
	original    string
	createdAt   time.Time

	// TimeoutSeconds bounds the model call for this task; 0 means the
	// streamer default. Set before the task is handed to the streamer.
	TimeoutSeconds int

	mu                    sync.Mutex
	selectionRange        Range
	inProgressReplacement *string
	replacement           *string
	diff                  *Diff
	state                 TaskState
	errMsg                string
	startedAt             time.Time
	completedAt           time.Time
	now                   func() time.Time
}

// TaskOption customises NewFixupTask.
type TaskOption func(*FixupTask)

// WithIDGenerator replaces the default uuid-based id generator.
func WithIDGenerator(gen IDGenerator) TaskOption {
	return func(t *FixupTask) {
		if gen != nil {
			t.id = gen()
		}
	}
}

// WithClock sets the time source used for task timestamps.
func WithClock(now func() time.Time) TaskOption {
	return func(t *FixupTask) {
		if now != nil {
			t.now = now
		}
	}
}

// NewFixupTask creates a task in StateWaiting with a fresh id.
func NewFixupTask(file *FixupFile, instruction, original string, rng Range, opts ...TaskOption) *FixupTask {
	t := &FixupTask{
		file:           file,
		instruction:    instruction,
		original:       original,
		selectionRange: rng,
		state:          StateWaiting,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.id == "" {
		t.id = uuid.NewString()
	}
	t.createdAt = t.now()
	return t
}

func (t *FixupTask) ID() string          { return t.id }
func (t *FixupTask) File() *FixupFile    { return t.file }
func (t *FixupTask) Instruction() string { return t.instruction }
func (t *FixupTask) Original() string    { return t.original }
func (t *FixupTask) CreatedAt() time.Time {
	return t.createdAt
}

// State returns the last successfully assigned state.
func (t *FixupTask) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TrySetState moves the task to next. Once the task is in StateError every
// call fails with ErrInvalidTransition, including a repeated StateError.
// Any other transition is accepted; which moves make sense is up to the
// caller driving the task.
func (t *FixupTask) TrySetState(next TaskState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setStateLocked(next)
}

func (t *FixupTask) setStateLocked(next TaskState) error {
	if t.state == StateError {
		return fmt.Errorf("%w: task %s is in %s, cannot move to %s", ErrInvalidTransition, t.id, StateError, next)
	}
	t.state = next
	now := t.now()
	switch next {
	case StateAsking:
		if t.startedAt.IsZero() {
			t.startedAt = now
		}
	case StateReady, StateApplied, StateError:
		t.completedAt = now
	}
	return nil
}

// Fail records msg and moves the task to StateError.
func (t *FixupTask) Fail(msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.setStateLocked(StateError); err != nil {
		return err
	}
	t.errMsg = msg
	return nil
}

// Err returns the message recorded by Fail, if any.
func (t *FixupTask) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

func (t *FixupTask) SelectionRange() Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectionRange
}

// SetSelectionRange moves the span the edit applies to, e.g. after text
// above it was inserted or deleted.
func (t *FixupTask) SetSelectionRange(r Range) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selectionRange = r
}

// InProgressReplacement returns the latest partial model output.
func (t *FixupTask) InProgressReplacement() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return deref(t.inProgressReplacement)
}

func (t *FixupTask) SetInProgressReplacement(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inProgressReplacement = &text
}

// Replacement returns the finished model output.
func (t *FixupTask) Replacement() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return deref(t.replacement)
}

// SetReplacement stores the finished output. It can only be set once.
func (t *FixupTask) SetReplacement(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.replacement != nil {
		return fmt.Errorf("%w: task %s", ErrReplacementFinal, t.id)
	}
	t.replacement = &text
	return nil
}

// LatestText returns the replacement if final, else the in-progress text.
func (t *FixupTask) LatestText() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.replacement != nil {
		return *t.replacement, true
	}
	return deref(t.inProgressReplacement)
}

// Diff returns the last stored diff. It may be stale relative to the
// replacement text.
func (t *FixupTask) Diff() *Diff {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.diff
}

func (t *FixupTask) SetDiff(d *Diff) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.diff = d
}

// TaskSnapshot is a consistent copy of a task's mutable fields.
type TaskSnapshot struct {
	ID             string
	Path           string
	Instruction    string
	State          TaskState
	SelectionRange Range
	Replacement    *string
	InProgress     *string
	Diff           *Diff
	Error          string
	CreatedAt      time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Snapshot copies the task under its lock.
func (t *FixupTask) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := TaskSnapshot{
		ID:             t.id,
		Instruction:    t.instruction,
		State:          t.state,
		SelectionRange: t.selectionRange,
		Replacement:    t.replacement,
		InProgress:     t.inProgressReplacement,
		Diff:           t.diff,
		Error:          t.errMsg,
		CreatedAt:      t.createdAt,
		StartedAt:      t.startedAt,
		CompletedAt:    t.completedAt,
	}
	if t.file != nil {
		s.Path = t.file.Path
	}
	return s
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
