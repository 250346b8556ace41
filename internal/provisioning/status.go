package provisioning

// Status is the normalized state of an asynchronous operation, derived from
// resource-kind-specific fields of a status response.
type Status string

const (
	// StatusPending means the operation is accepted but not progressing yet.
	StatusPending Status = "PENDING"
	// StatusRunning means the operation is in progress.
	StatusRunning Status = "RUNNING"
	// StatusSucceeded is terminal success.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusFailed is terminal failure.
	StatusFailed Status = "FAILED"
	// StatusTimedOut means the poller gave up before a terminal state.
	StatusTimedOut Status = "TIMED_OUT"
	// StatusUnknown covers states outside the kind's mapping.
	StatusUnknown Status = "UNKNOWN"
)

// Terminal reports whether no further transition can occur. The poller
// never issues another status query once a terminal status is observed.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	default:
		return false
	}
}

// StateMapping maps raw resource states reported by the control plane to
// normalized statuses. Each kind supplies one mapping per operation; a nil
// mapping marks the operation as synchronous (no polling).
type StateMapping map[string]Status

// Map normalizes a raw state. States outside the mapping are Unknown,
// which is non-terminal: the poller keeps watching them until the deadline.
func (m StateMapping) Map(raw string) Status {
	if s, ok := m[raw]; ok {
		return s
	}
	return StatusUnknown
}
