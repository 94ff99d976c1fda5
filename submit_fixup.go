// submit_fixup.go defines the submit_fixup tool types.
package main

// SubmitFixupArgs is the input for the submit_fixup tool. Lines are 1-based
// and inclusive.
type SubmitFixupArgs struct {
	File           string `json:"file"                      jsonschema:"Path of the file to edit"`
	StartLine      int    `json:"start_line"                jsonschema:"First line of the selection (1-based)"`
	EndLine        int    `json:"end_line"                  jsonschema:"Last line of the selection (1-based, inclusive)"`
	Instruction    string `json:"instruction"               jsonschema:"What to change. Prefix with /chat to ask a question instead."`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"Per-task model timeout. 0 uses the server default."`
}

// SubmitFixupOutput carries exactly one of the three outcomes: a queued
// task, a chat answer, or a warning explaining why nothing happened.
type SubmitFixupOutput struct {
	TaskID       string `json:"task_id,omitempty"`
	ChatResponse string `json:"chat_response,omitempty"`
	Warning      string `json:"warning,omitempty"`
}
