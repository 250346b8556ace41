package provisioning

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/config"
)

// recordingObserver captures events and log lines for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
	logs   []string
}

func (r *recordingObserver) Printf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Event(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) WithFields(_ map[string]string) Observer {
	return r
}

func (r *recordingObserver) countOf(eventType EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// fastTimeouts keeps orchestration tests in the millisecond range.
func fastTimeouts() *config.Timeouts {
	return &config.Timeouts{
		RequestTimeout:   time.Second,
		PollTimeout:      time.Second,
		PollInterval:     time.Millisecond,
		RetryMaxAttempts: 5,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    5 * time.Millisecond,
	}
}

// testKind is a configurable fake resource kind. Its endpoints use short
// fixed paths so scripted executors stay readable.
type testKind struct {
	kindName     string
	createStates StateMapping
	deleteStates StateMapping
	runStates    StateMapping

	findID    string
	findState string
	found     bool
}

func newTestKind() *testKind {
	return &testKind{
		kindName: "widget",
		createStates: StateMapping{
			"PENDING": StatusPending,
			"READY":   StatusSucceeded,
			"ERROR":   StatusFailed,
		},
		deleteStates: StateMapping{
			"DELETING": StatusRunning,
			"GONE":     StatusSucceeded,
			"ERROR":    StatusFailed,
		},
		runStates: StateMapping{
			"RUNNING": StatusRunning,
			"SUCCESS": StatusSucceeded,
			"FAILED":  StatusFailed,
		},
	}
}

func (k *testKind) Name() string { return k.kindName }

func (k *testKind) CreateRequest(spec Spec) (api.Request, error) {
	body := map[string]any{"name": spec.Name}
	for key, v := range spec.Payload {
		body[key] = v
	}
	return api.Post("/create", body), nil
}

func (k *testKind) UpdateRequest(id string, spec Spec) (api.Request, error) {
	return api.Post("/update", map[string]any{"id": id, "spec": spec.Payload}), nil
}

func (k *testKind) DeleteRequest(id string) api.Request {
	return api.Post("/delete", map[string]any{"id": id})
}

func (k *testKind) StatusRequest(id string) api.Request {
	return api.Get("/get", url.Values{"id": {id}})
}

func (k *testKind) ExtractID(resp *api.Response) (string, error) {
	if id, ok := resp.StringField("id"); ok {
		return id, nil
	}
	return "", errors.New("response has no id field")
}

func (k *testKind) ExtractState(resp *api.Response) (string, error) {
	if state, ok := resp.StringField("state"); ok {
		return state, nil
	}
	return "", errors.New("response has no state field")
}

func (k *testKind) CreateStates() StateMapping { return k.createStates }
func (k *testKind) DeleteStates() StateMapping { return k.deleteStates }

func (k *testKind) ListRequest() api.Request {
	return api.Get("/list", nil)
}

func (k *testKind) FindByName(_ *api.Response, _ string) (string, string, bool) {
	return k.findID, k.findState, k.found
}

func (k *testKind) StartRequest(id string) api.Request {
	return api.Post("/run", map[string]any{"id": id})
}

func (k *testKind) ExtractRunID(resp *api.Response) (string, error) {
	if runID, ok := resp.StringField("run_id"); ok {
		return runID, nil
	}
	return "", errors.New("response has no run_id field")
}

func (k *testKind) RunStatusRequest(runID string) api.Request {
	return api.Get("/runs/get", url.Values{"run_id": {runID}})
}

func (k *testKind) ExtractRunState(resp *api.Response) (string, error) {
	if state, ok := resp.StringField("run_state"); ok {
		return state, nil
	}
	return "", errors.New("response has no run_state field")
}

func (k *testKind) RunStates() StateMapping { return k.runStates }

// noRunKind strips the Starter methods off a testKind.
type noRunKind struct {
	Kind
}
