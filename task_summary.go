// task_summary.go defines the check_fixups tool types: lightweight status
// polling with per-state counts and per-task status (no replacement text).
package main

// CheckFixupsArgs is the input for the check_fixups tool.
type CheckFixupsArgs struct {
	// TaskIDs filters to specific tasks. Empty returns all tasks.
	TaskIDs []string `json:"task_ids,omitempty" jsonschema:"Filter to specific task IDs. Empty returns all."`
	// File filters to tasks editing this path.
	File string `json:"file,omitempty" jsonschema:"Filter tasks by the file they edit"`
}

// CheckFixupsOutput contains a compact summary plus individual task statuses.
type CheckFixupsOutput struct {
	Summary FixupSummary  `json:"summary"`
	Tasks   []FixupStatus `json:"tasks"`
}

// FixupSummary provides counts across all matched tasks.
type FixupSummary struct {
	Total   int               `json:"total"`
	ByState map[TaskState]int `json:"by_state"`
}

// FixupStatus is the per-task view in check_fixups.
type FixupStatus struct {
	ID             string    `json:"id"`
	File           string    `json:"file,omitempty"`
	State          TaskState `json:"state"`
	Error          string    `json:"error,omitempty"`
	ElapsedSeconds int       `json:"elapsed_seconds"` // meaning varies by state
}
