package provisioning

import (
	"encoding/json"
	"time"
)

// Result is the single structured record an orchestration run produces.
// It is created exactly once per invocation; partial progress before a
// fatal error is still surfaced through the trace.
type Result struct {
	Kind      string        `json:"kind"`
	Operation string        `json:"operation"`
	ID        string        `json:"id,omitempty"`
	RunID     string        `json:"run_id,omitempty"` // populated by Run
	Status    Status        `json:"status"`
	LastState string        `json:"last_state,omitempty"` // last raw state observed by the poller
	Trace     Trace         `json:"trace"`
	Error     string        `json:"error,omitempty"`
	Cleanup   string        `json:"cleanup_error,omitempty"` // recorded, never masks the original failure
	Elapsed   time.Duration `json:"elapsed"`
}

// Succeeded reports whether the run reached its desired terminal state.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Attempts returns the total number of attempted REST calls.
func (r *Result) Attempts() int {
	return len(r.Trace)
}

// JSON renders the result for the external caller.
func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
