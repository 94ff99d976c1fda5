// cancel_tasks.go defines the cancel_fixups tool types.
package main

// CancelFixupsArgs is the input for the cancel_fixups tool.
type CancelFixupsArgs struct {
	// TaskIDs cancels specific tasks. If both TaskIDs and File are empty,
	// every task not yet applied is cancelled.
	TaskIDs []string `json:"task_ids,omitempty" jsonschema:"Specific task IDs to cancel. Empty with no file cancels all."`
	File    string   `json:"file,omitempty"     jsonschema:"Cancel all tasks editing this file"`
}

// CancelFixupsOutput reports how many tasks were cancelled and removed.
type CancelFixupsOutput struct {
	Cancelled int `json:"cancelled"`
}
