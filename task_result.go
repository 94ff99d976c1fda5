// task_result.go defines the get_fixup_result tool types: the replacement
// text and diff for specific tasks.
package main

// GetFixupResultArgs is the input for the get_fixup_result tool.
type GetFixupResultArgs struct {
	TaskIDs []string `json:"task_ids" jsonschema:"Task IDs to retrieve replacements and diffs for"`
}

// GetFixupResultOutput contains the full content for each requested task.
type GetFixupResultOutput struct {
	Results []FixupResult `json:"results"`
}

// FixupResult is the full view of one task. State is "not_found" for
// unknown IDs.
type FixupResult struct {
	ID           string    `json:"id"`
	File         string    `json:"file,omitempty"`
	Instruction  string    `json:"instruction,omitempty"`
	State        TaskState `json:"state"`
	Range        Range     `json:"range"`
	Replacement  string    `json:"replacement,omitempty"`
	Partial      bool      `json:"partial,omitempty"` // replacement is still streaming
	Patch        string    `json:"patch,omitempty"`   // unified patch; may lag behind replacement
	AddedLines   int       `json:"added_lines"`
	DeletedLines int       `json:"deleted_lines"`
	Error        string    `json:"error,omitempty"`
}
