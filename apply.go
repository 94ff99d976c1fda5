// apply.go writes a ready task's replacement into its file.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNotReady is returned when applying a task whose replacement is
	// not final.
	ErrNotReady = errors.New("task is not ready to apply")

	// ErrSelectionChanged is returned when the file no longer holds the
	// task's original text at its selection range.
	ErrSelectionChanged = errors.New("selection changed since the task was created")
)

// ApplyTask splices the task's replacement into its file at the selection
// range: ready -> applying -> applied. Write failures move the task to
// error. Tasks in any state other than ready are refused and left alone.
func ApplyTask(t *FixupTask, logger *Logger) error {
	if state := t.State(); state != StateReady {
		return fmt.Errorf("apply %s: %w (state %s)", t.ID(), ErrNotReady, state)
	}
	if t.File() == nil {
		return fmt.Errorf("apply %s: %w (no file)", t.ID(), ErrNotReady)
	}
	replacement, ok := t.Replacement()
	if !ok {
		return fmt.Errorf("apply %s: %w (no replacement)", t.ID(), ErrNotReady)
	}
	if err := t.TrySetState(StateApplying); err != nil {
		return err
	}
	logger.LogProcessStep(t.ID(), "applying")

	if err := spliceFile(t.File().Path, t.SelectionRange(), t.Original(), replacement); err != nil {
		err = fmt.Errorf("apply %s: %w", t.ID(), err)
		logger.LogError(err)
		if ferr := t.Fail(err.Error()); ferr != nil {
			logger.LogError(ferr)
		}
		return err
	}
	if err := t.TrySetState(StateApplied); err != nil {
		return err
	}
	logger.LogProcessStep(t.ID(), "applied")
	return nil
}

func spliceFile(path string, rng Range, original, replacement string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)
	start, end, err := rangeOffsets(content, rng)
	if err != nil {
		return err
	}
	if content[start:end] != original {
		return ErrSelectionChanged
	}
	updated := content[:start] + matchTrailingNewline(original, replacement) + content[end:]
	return os.WriteFile(path, []byte(updated), info.Mode().Perm())
}

// matchTrailingNewline gives the replacement the same trailing newline
// behaviour as the text it replaces, so a line selection stays a line.
func matchTrailingNewline(original, replacement string) string {
	switch {
	case strings.HasSuffix(original, "\n") && !strings.HasSuffix(replacement, "\n"):
		return replacement + "\n"
	case !strings.HasSuffix(original, "\n") && strings.HasSuffix(replacement, "\n"):
		return strings.TrimSuffix(replacement, "\n")
	}
	return replacement
}
