package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/provisor/internal/api"
)

var testCred = api.NewCredential("https://unit.test", "token")

func newTestOrchestrator(kind Kind, exec api.Executor, opts ...Option) (*Orchestrator, *recordingObserver) {
	obs := &recordingObserver{}
	opts = append([]Option{WithObserver(obs), WithTimeouts(fastTimeouts())}, opts...)
	return New(kind, exec, testCred, opts...), obs
}

func TestProvision_HappyPath(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get",
			api.Respond(200, map[string]any{"state": "PENDING"}),
			api.Respond(200, map[string]any{"state": "READY"}),
		)
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha", Payload: map[string]any{"size": "m"}})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, "w-1", result.ID)
	assert.Equal(t, "READY", result.LastState)
	assert.Equal(t, 1, result.Trace.CallsFor("create"))
	assert.Equal(t, 2, result.Trace.CallsFor("status"))
	assert.Equal(t, 3, result.Attempts())
	assert.Equal(t, 1, obs.countOf(EventResourceCreated))

	calls := exec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "alpha", calls[0].Body["name"])
	assert.Equal(t, "m", calls[0].Body["size"])
	assert.Equal(t, "w-1", calls[1].Query.Get("id"))
}

func TestProvision_InvalidRequestFailsFast(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Fail(&api.Error{Kind: api.KindInvalidRequest, StatusCode: 400, Message: "bad spec"}))
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.Error(t, err)

	var createErr *CreateError
	require.ErrorAs(t, err, &createErr)
	assert.True(t, api.IsKind(err, api.KindInvalidRequest))

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Attempts())
	assert.Equal(t, 0, result.Trace.CallsFor("status"))
	assert.Equal(t, 400, result.Trace[0].StatusCode)
	assert.NotEmpty(t, result.Error)
}

func TestProvision_RetriesTransientCreate(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create",
			api.Fail(&api.Error{Kind: api.KindServerError, StatusCode: 503}),
			api.Fail(&api.Error{Kind: api.KindServerError, StatusCode: 503}),
			api.Respond(200, map[string]any{"id": "w-1"}),
		).
		On("/get", api.Respond(200, map[string]any{"state": "READY"}))
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, 3, result.Trace.CallsFor("create"))
	assert.Equal(t, 503, result.Trace[0].StatusCode)
	assert.Equal(t, 200, result.Trace[2].StatusCode)
	assert.Equal(t, 2, obs.countOf(EventRetryWaiting))
}

func TestProvision_FailedStateTriggersCleanup(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get",
			api.Fail(&api.Error{Kind: api.KindServerError, StatusCode: 503}),
			api.Fail(&api.Error{Kind: api.KindServerError, StatusCode: 503}),
			api.Respond(200, map[string]any{"state": "ERROR"}),
		).
		On("/delete", api.Respond(200, map[string]any{}))
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "ERROR", result.LastState)
	assert.Equal(t, 1, result.Trace.CallsFor("create"))
	assert.Equal(t, 3, result.Trace.CallsFor("status"))
	assert.Equal(t, 1, result.Trace.CallsFor("cleanup"))
	assert.Equal(t, 5, result.Attempts())
	assert.Empty(t, result.Cleanup)
	assert.Equal(t, 1, obs.countOf(EventResourceFailed))
}

func TestProvision_CleanupFailureNeverMasksOriginalError(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get", api.Respond(200, map[string]any{"state": "ERROR"})).
		On("/delete", api.Fail(&api.Error{Kind: api.KindInvalidRequest, StatusCode: 400, Message: "already gone"}))
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR")
	assert.NotContains(t, err.Error(), "already gone")
	assert.Contains(t, result.Cleanup, "already gone")
}

func TestProvision_TimeoutSkipsCleanup(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get", api.Respond(200, map[string]any{"state": "PENDING"}))
	timeouts := fastTimeouts()
	timeouts.PollTimeout = 25 * time.Millisecond
	timeouts.PollInterval = 5 * time.Millisecond
	orch, _ := newTestOrchestrator(newTestKind(), exec, WithTimeouts(timeouts))

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.Error(t, err)

	assert.Equal(t, StatusTimedOut, result.Status)
	assert.Equal(t, "PENDING", result.LastState)
	assert.Equal(t, "w-1", result.ID)
	assert.Zero(t, result.Trace.CallsFor("cleanup"))
	assert.Zero(t, exec.CallsTo("/delete"))
}

func TestProvision_MissingIDInCreateResponse(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{}))
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.Error(t, err)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Attempts())
}

func TestProvision_SynchronousKindSkipsPolling(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.createStates = nil
	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"}))
	orch, _ := newTestOrchestrator(kind, exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, 1, result.Attempts())
	assert.Zero(t, exec.CallsTo("/get"))
}

func TestProvision_IdempotencyLookupSkipsCreate(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.found, kind.findID, kind.findState = true, "w-9", "READY"
	exec := api.NewScriptedExecutor().
		On("/list", api.Respond(200, map[string]any{})).
		On("/get", api.Respond(200, map[string]any{"state": "READY"}))
	orch, obs := newTestOrchestrator(kind, exec, WithIdempotencyLookup())

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, "w-9", result.ID)
	assert.Zero(t, exec.CallsTo("/create"))
	assert.Equal(t, 1, result.Trace.CallsFor("list"))
	assert.Equal(t, 1, obs.countOf(EventResourceExists))
	assert.Zero(t, obs.countOf(EventResourceCreating))
}

func TestProvision_LookupFailureFallsThroughToCreate(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	exec := api.NewScriptedExecutor().
		On("/list", api.Fail(&api.Error{Kind: api.KindInvalidRequest, StatusCode: 400})).
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get", api.Respond(200, map[string]any{"state": "READY"}))
	orch, _ := newTestOrchestrator(kind, exec, WithIdempotencyLookup())

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, 1, exec.CallsTo("/create"))
}

func TestProvision_FailedExistingResourceIsReplaced(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.found, kind.findID, kind.findState = true, "w-old", "ERROR"
	exec := api.NewScriptedExecutor().
		On("/list", api.Respond(200, map[string]any{})).
		On("/create", api.Respond(200, map[string]any{"id": "w-new"})).
		On("/get", api.Respond(200, map[string]any{"state": "READY"}))
	orch, _ := newTestOrchestrator(kind, exec, WithIdempotencyLookup())

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "w-new", result.ID)
	assert.Equal(t, 1, exec.CallsTo("/create"))
}

func TestProvision_CancellationIsPrompt(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get", api.Respond(200, map[string]any{"state": "PENDING"}))
	timeouts := fastTimeouts()
	timeouts.PollTimeout = 10 * time.Second
	timeouts.PollInterval = 50 * time.Millisecond
	orch, _ := newTestOrchestrator(newTestKind(), exec, WithTimeouts(timeouts))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := orch.Provision(ctx, Spec{Name: "alpha"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, result.Succeeded())
}

func TestUpdate_PollsUntilSettled(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/update", api.Respond(200, map[string]any{})).
		On("/get",
			api.Respond(200, map[string]any{"state": "PENDING"}),
			api.Respond(200, map[string]any{"state": "READY"}),
		)
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Update(context.Background(), "w-1", Spec{Payload: map[string]any{"size": "l"}})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, 1, result.Trace.CallsFor("update"))
	assert.Equal(t, 2, result.Trace.CallsFor("status"))
}

func TestUpdate_SynchronousKind(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.createStates = nil
	exec := api.NewScriptedExecutor().
		On("/update", api.Respond(200, map[string]any{}))
	orch, _ := newTestOrchestrator(kind, exec)

	result, err := orch.Update(context.Background(), "w-1", Spec{})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Zero(t, exec.CallsTo("/get"))
}

func TestDelete_PollsUntilGone(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/delete", api.Respond(200, map[string]any{})).
		On("/get",
			api.Respond(200, map[string]any{"state": "DELETING"}),
			api.Respond(200, map[string]any{"state": "GONE"}),
		)
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Delete(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "GONE", result.LastState)
	assert.Equal(t, 1, obs.countOf(EventResourceDeleted))
}

func TestDelete_SynchronousKind(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.deleteStates = nil
	exec := api.NewScriptedExecutor().
		On("/delete", api.Respond(200, map[string]any{}))
	orch, _ := newTestOrchestrator(kind, exec)

	result, err := orch.Delete(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Zero(t, exec.CallsTo("/get"))
}

func TestRun_PollsRunToCompletion(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/run", api.Respond(200, map[string]any{"run_id": "r-7"})).
		On("/runs/get",
			api.Respond(200, map[string]any{"run_state": "RUNNING"}),
			api.Respond(200, map[string]any{"run_state": "SUCCESS"}),
		)
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Run(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "r-7", result.RunID)
	assert.Equal(t, "SUCCESS", result.LastState)
}

func TestRun_FailedRunState(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/run", api.Respond(200, map[string]any{"run_id": "r-7"})).
		On("/runs/get", api.Respond(200, map[string]any{"run_state": "FAILED"}))
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Run(context.Background(), "w-1")
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "FAILED", result.LastState)
}

func TestRun_UnsupportedKind(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor()
	orch, _ := newTestOrchestrator(noRunKind{Kind: newTestKind()}, exec)

	result, err := orch.Run(context.Background(), "w-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support runs")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Empty(t, exec.Calls())
}

func TestStatus_OneShot(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/get", api.Respond(200, map[string]any{"state": "PENDING"}))
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	status, raw, err := orch.Status(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
	assert.Equal(t, "PENDING", raw)
	assert.Equal(t, 1, exec.CallsTo("/get"))
	assert.Equal(t, 1, obs.countOf(EventOperationCompleted))
}

func TestStatus_FailureStillCompletesOperation(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/get", api.Fail(&api.Error{Kind: api.KindInvalidRequest, StatusCode: 400, Message: "no such widget"}))
	orch, obs := newTestOrchestrator(newTestKind(), exec)

	status, _, err := orch.Status(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, StatusUnknown, status)
	assert.Equal(t, 1, obs.countOf(EventOperationCompleted))
}

func TestStatus_SynchronousKindReportsSucceeded(t *testing.T) {
	t.Parallel()

	kind := newTestKind()
	kind.createStates = nil
	exec := api.NewScriptedExecutor().
		On("/get", api.Respond(200, map[string]any{"state": "PRESENT"}))
	orch, _ := newTestOrchestrator(kind, exec)

	status, raw, err := orch.Status(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
	assert.Equal(t, "PRESENT", raw)
}

func TestOrchestrator_ResultJSONRoundTrips(t *testing.T) {
	t.Parallel()

	exec := api.NewScriptedExecutor().
		On("/create", api.Respond(200, map[string]any{"id": "w-1"})).
		On("/get", api.Respond(200, map[string]any{"state": "READY"}))
	orch, _ := newTestOrchestrator(newTestKind(), exec)

	result, err := orch.Provision(context.Background(), Spec{Name: "alpha"})
	require.NoError(t, err)

	out, err := result.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status": "SUCCEEDED"`)
	assert.Contains(t, string(out), `"operation": "provision"`)
}
