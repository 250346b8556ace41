package provisioning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/imamik/provisor/internal/api"
)

// CallRecord is one attempted REST call and its outcome. Every attempt is
// recorded, including the failed attempts a retry loop recovers from, so
// the final result carries a full diagnostic trace.
type CallRecord struct {
	Operation  string        `json:"operation"` // create, status, delete, update, list, run
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code,omitempty"` // 0 for transport-level failures
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Time       time.Time     `json:"time"`
}

// Trace is the ordered list of attempted calls of one orchestration run.
type Trace []CallRecord

// CallsFor counts recorded attempts for the given logical operation.
func (t Trace) CallsFor(operation string) int {
	n := 0
	for _, r := range t {
		if r.Operation == operation {
			n++
		}
	}
	return n
}

// tracedExecutor wraps an Executor and appends a CallRecord per attempt.
// An orchestration run is sequential, so the operation label is switched
// between phases without locking; the mutex only guards the trace slice
// against the executor being shared with a caller-owned goroutine.
type tracedExecutor struct {
	inner api.Executor

	mu        sync.Mutex
	operation string
	trace     Trace
}

func newTracedExecutor(inner api.Executor) *tracedExecutor {
	return &tracedExecutor{inner: inner}
}

func (t *tracedExecutor) phase(operation string) {
	t.mu.Lock()
	t.operation = operation
	t.mu.Unlock()
}

func (t *tracedExecutor) snapshot() Trace {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(Trace, len(t.trace))
	copy(out, t.trace)
	return out
}

// Execute implements api.Executor.
func (t *tracedExecutor) Execute(ctx context.Context, cred api.Credential, req api.Request) (*api.Response, error) {
	start := time.Now()
	resp, err := t.inner.Execute(ctx, cred, req)

	record := CallRecord{
		Method:   req.Method,
		Path:     req.Path,
		Duration: time.Since(start),
		Time:     start,
	}
	if resp != nil {
		record.StatusCode = resp.StatusCode
	}
	if err != nil {
		record.Error = err.Error()
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			record.StatusCode = apiErr.StatusCode
		}
	}

	t.mu.Lock()
	record.Operation = t.operation
	t.trace = append(t.trace, record)
	t.mu.Unlock()

	return resp, err
}
