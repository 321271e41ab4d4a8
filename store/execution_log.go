package store

// ExecutionLogEntry is one recorded step of an action's lifecycle. An
// action typically produces two entries, the attempt and its terminal
// phase; rejected actions produce the attempt and the rejection.
type ExecutionLogEntry struct {
	ID      int64          `json:"id"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"`
	Phase   string         `json:"phase"`
	Payload map[string]any `json:"payload,omitempty"`

	// Standard fields
	CreatedTs int64 `json:"created_ts"`
}

// FindExecutionLog filters execution log listings. Nil fields are not
// filtered on; results are newest first.
type FindExecutionLog struct {
	Actor  *string
	Action *string
	Limit  *int
}
