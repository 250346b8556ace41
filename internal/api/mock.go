package api

import (
	"context"
	"fmt"
	"sync"
)

// MockExecutor is a mock implementation of Executor. Tests set ExecuteFunc
// and inspect the recorded calls afterwards.
type MockExecutor struct {
	ExecuteFunc func(ctx context.Context, cred Credential, req Request) (*Response, error)

	mu    sync.Mutex
	calls []Request
}

// Execute records the call and delegates to ExecuteFunc.
func (m *MockExecutor) Execute(ctx context.Context, cred Credential, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.ExecuteFunc(ctx, cred, req)
}

// Calls returns a copy of all recorded requests in order.
func (m *MockExecutor) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo counts recorded requests against the given path.
func (m *MockExecutor) CallsTo(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Path == path {
			n++
		}
	}
	return n
}

// Outcome is one scripted reply of a ScriptedExecutor.
type Outcome struct {
	Resp *Response
	Err  error
}

// Respond builds a successful scripted outcome.
func Respond(status int, body map[string]any) Outcome {
	return Outcome{Resp: &Response{StatusCode: status, Body: body}}
}

// Fail builds a failed scripted outcome.
func Fail(err error) Outcome {
	return Outcome{Err: err}
}

// ScriptedExecutor replays per-path outcome queues. When a queue runs dry
// its last outcome repeats, which keeps polling scripts short.
type ScriptedExecutor struct {
	MockExecutor

	mu      sync.Mutex
	scripts map[string][]Outcome
}

// NewScriptedExecutor creates an empty ScriptedExecutor.
func NewScriptedExecutor() *ScriptedExecutor {
	s := &ScriptedExecutor{scripts: make(map[string][]Outcome)}
	s.ExecuteFunc = s.replay
	return s
}

// On queues outcomes for requests against the given path.
func (s *ScriptedExecutor) On(path string, outcomes ...Outcome) *ScriptedExecutor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[path] = append(s.scripts[path], outcomes...)
	return s
}

func (s *ScriptedExecutor) replay(_ context.Context, _ Credential, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.scripts[req.Path]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no scripted outcome for %s %s", req.Method, req.Path)
	}

	next := queue[0]
	if len(queue) > 1 {
		s.scripts[req.Path] = queue[1:]
	}
	return next.Resp, next.Err
}
