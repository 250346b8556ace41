// Package provisioning drives resource lifecycles against the control
// plane: create, poll until terminal, update, delete. One Orchestrator per
// resource kind; concurrent orchestrations share nothing mutable.
package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/config"
	"github.com/imamik/provisor/internal/metrics"
	"github.com/imamik/provisor/internal/retry"
)

// Orchestrator sequences the REST calls of one resource kind's lifecycle.
type Orchestrator struct {
	kind     Kind
	exec     api.Executor
	cred     api.Credential
	obs      Observer
	timeouts *config.Timeouts
	lookup   bool
	rand     func() float64
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithObserver replaces the default console observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.obs = obs
	}
}

// WithTimeouts replaces the environment-derived timing configuration.
func WithTimeouts(t *config.Timeouts) Option {
	return func(o *Orchestrator) {
		o.timeouts = t
	}
}

// WithIdempotencyLookup enables the existing-resource lookup before create
// calls, so re-executing a provision run converges instead of duplicating.
func WithIdempotencyLookup() Option {
	return func(o *Orchestrator) {
		o.lookup = true
	}
}

// WithJitterSource injects the backoff jitter randomness source.
func WithJitterSource(fn func() float64) Option {
	return func(o *Orchestrator) {
		o.rand = fn
	}
}

// New creates an Orchestrator for the given kind. The credential is copied
// in and treated as read-only for the orchestrator's lifetime.
func New(kind Kind, exec api.Executor, cred api.Credential, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		kind:     kind,
		exec:     exec,
		cred:     cred,
		obs:      NewConsoleObserver(),
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Provision creates the resource described by spec and waits for it to
// become ready. Exactly one Result is produced; a failed run still carries
// the full call trace and the last observed state.
func (o *Orchestrator) Provision(ctx context.Context, spec Spec) (*Result, error) {
	run := o.newRun("provision")

	id, found := "", false
	if o.lookup && spec.Name != "" {
		id, found = o.findExisting(ctx, run.exec, spec.Name)
	}

	if found {
		run.result.ID = id
		o.obs.Event(Event{
			Type:     EventResourceExists,
			Kind:     o.kind.Name(),
			Resource: spec.Name,
			Message:  o.kind.Name() + " already exists, skipping create",
			Fields:   map[string]string{"id": id},
		})
	} else {
		o.obs.Event(Event{
			Type:     EventResourceCreating,
			Kind:     o.kind.Name(),
			Resource: spec.Name,
			Message:  "creating " + o.kind.Name(),
		})

		run.exec.phase("create")
		resp, err := o.call(ctx, run.exec, "create", func() (api.Request, error) {
			return o.kind.CreateRequest(spec)
		})
		if err != nil {
			run.result.Status = StatusFailed
			return run.finish(&CreateError{Kind: o.kind.Name(), Err: err})
		}

		id, err = o.kind.ExtractID(resp)
		if err != nil {
			run.result.Status = StatusFailed
			return run.finish(&CreateError{Kind: o.kind.Name(), Err: &ExtractionError{What: "resource id", Err: err}})
		}
		run.result.ID = id

		o.obs.Event(Event{
			Type:     EventResourceCreated,
			Kind:     o.kind.Name(),
			Resource: spec.Name,
			Message:  o.kind.Name() + " created",
			Fields:   map[string]string{"id": id},
		})
	}

	mapping := o.kind.CreateStates()
	if mapping == nil {
		// Synchronous kind: the create response is the terminal state.
		run.result.Status = StatusSucceeded
		return run.finish(nil)
	}

	status, raw, err := o.poll(ctx, run.exec, func() api.Request { return o.kind.StatusRequest(id) }, o.kind.ExtractState, mapping, id)
	run.result.Status, run.result.LastState = status, raw
	if err != nil {
		return run.finish(err)
	}

	switch status {
	case StatusFailed:
		o.obs.Event(Event{
			Type:     EventResourceFailed,
			Kind:     o.kind.Name(),
			Resource: id,
			Message:  fmt.Sprintf("%s reached failed state %s", o.kind.Name(), raw),
		})
		o.cleanup(ctx, run, id)
		return run.finish(fmt.Errorf("%s %s reached state %s", o.kind.Name(), id, raw))
	case StatusTimedOut:
		// The resource may still be creating; deleting it here would turn a
		// slow provision into a destroyed one.
		return run.finish(fmt.Errorf("%s %s did not reach a terminal state within %v (last state %s)",
			o.kind.Name(), id, o.timeouts.PollTimeout, raw))
	default:
		return run.finish(nil)
	}
}

// Update applies spec to an existing resource and waits for it to settle.
func (o *Orchestrator) Update(ctx context.Context, id string, spec Spec) (*Result, error) {
	run := o.newRun("update")
	run.result.ID = id

	run.exec.phase("update")
	_, err := o.call(ctx, run.exec, "update", func() (api.Request, error) {
		return o.kind.UpdateRequest(id, spec)
	})
	if err != nil {
		run.result.Status = StatusFailed
		return run.finish(fmt.Errorf("failed to update %s %s: %w", o.kind.Name(), id, err))
	}

	mapping := o.kind.CreateStates()
	if mapping == nil {
		run.result.Status = StatusSucceeded
		return run.finish(nil)
	}

	status, raw, err := o.poll(ctx, run.exec, func() api.Request { return o.kind.StatusRequest(id) }, o.kind.ExtractState, mapping, id)
	run.result.Status, run.result.LastState = status, raw
	if err != nil {
		return run.finish(err)
	}
	if status != StatusSucceeded {
		return run.finish(fmt.Errorf("%s %s did not settle after update (state %s)", o.kind.Name(), id, raw))
	}
	return run.finish(nil)
}

// Delete removes the resource and, for asynchronous kinds, waits for the
// deletion to complete.
func (o *Orchestrator) Delete(ctx context.Context, id string) (*Result, error) {
	run := o.newRun("delete")
	run.result.ID = id

	o.obs.Event(Event{
		Type:     EventResourceDeleting,
		Kind:     o.kind.Name(),
		Resource: id,
		Message:  "deleting " + o.kind.Name(),
	})

	run.exec.phase("delete")
	_, err := o.call(ctx, run.exec, "delete", func() (api.Request, error) {
		return o.kind.DeleteRequest(id), nil
	})
	if err != nil {
		run.result.Status = StatusFailed
		return run.finish(fmt.Errorf("failed to delete %s %s: %w", o.kind.Name(), id, err))
	}

	mapping := o.kind.DeleteStates()
	if mapping != nil {
		status, raw, err := o.poll(ctx, run.exec, func() api.Request { return o.kind.StatusRequest(id) }, o.kind.ExtractState, mapping, id)
		run.result.Status, run.result.LastState = status, raw
		if err != nil {
			return run.finish(err)
		}
		if status != StatusSucceeded {
			return run.finish(fmt.Errorf("%s %s did not finish deleting (state %s)", o.kind.Name(), id, raw))
		}
	} else {
		run.result.Status = StatusSucceeded
	}

	o.obs.Event(Event{
		Type:     EventResourceDeleted,
		Kind:     o.kind.Name(),
		Resource: id,
		Message:  o.kind.Name() + " deleted",
	})
	return run.finish(nil)
}

// Run triggers a run of an existing resource and waits for its outcome.
// Only kinds implementing Starter (jobs) support it.
func (o *Orchestrator) Run(ctx context.Context, id string) (*Result, error) {
	run := o.newRun("run")
	run.result.ID = id

	starter, ok := o.kind.(Starter)
	if !ok {
		run.result.Status = StatusFailed
		return run.finish(fmt.Errorf("%s does not support runs", o.kind.Name()))
	}

	run.exec.phase("run")
	resp, err := o.call(ctx, run.exec, "run", func() (api.Request, error) {
		return starter.StartRequest(id), nil
	})
	if err != nil {
		run.result.Status = StatusFailed
		return run.finish(fmt.Errorf("failed to start %s %s: %w", o.kind.Name(), id, err))
	}

	runID, err := starter.ExtractRunID(resp)
	if err != nil {
		run.result.Status = StatusFailed
		return run.finish(&ExtractionError{What: "run id", Err: err})
	}
	run.result.RunID = runID

	status, raw, err := o.poll(ctx, run.exec, func() api.Request { return starter.RunStatusRequest(runID) }, starter.ExtractRunState, starter.RunStates(), runID)
	run.result.Status, run.result.LastState = status, raw
	if err != nil {
		return run.finish(err)
	}
	if status != StatusSucceeded {
		return run.finish(fmt.Errorf("run %s of %s %s finished with state %s", runID, o.kind.Name(), id, raw))
	}
	return run.finish(nil)
}

// Status performs a one-shot status fetch without polling.
func (o *Orchestrator) Status(ctx context.Context, id string) (Status, string, error) {
	run := o.newRun("status")
	run.result.ID = id
	run.exec.phase("status")

	resp, err := o.call(ctx, run.exec, "status", func() (api.Request, error) {
		return o.kind.StatusRequest(id), nil
	})
	if err != nil {
		run.result.Status = StatusFailed
		_, _ = run.finish(err)
		return StatusUnknown, "", err
	}

	raw, err := o.kind.ExtractState(resp)
	if err != nil {
		extractErr := &ExtractionError{What: "state", Err: err}
		run.result.Status = StatusFailed
		_, _ = run.finish(extractErr)
		return StatusUnknown, "", extractErr
	}

	status := StatusSucceeded
	if mapping := o.kind.CreateStates(); mapping != nil {
		status = mapping.Map(raw)
	}
	run.result.Status, run.result.LastState = status, raw
	_, _ = run.finish(nil)
	return status, raw, nil
}

// run bundles the per-invocation state: the traced executor and the single
// Result this invocation will produce.
type orchestrationRun struct {
	o      *Orchestrator
	exec   *tracedExecutor
	result *Result
	start  time.Time
}

func (o *Orchestrator) newRun(operation string) *orchestrationRun {
	return &orchestrationRun{
		o:     o,
		exec:  newTracedExecutor(o.exec),
		start: time.Now(),
		result: &Result{
			Kind:      o.kind.Name(),
			Operation: operation,
			Status:    StatusUnknown,
		},
	}
}

func (r *orchestrationRun) finish(err error) (*Result, error) {
	r.result.Trace = r.exec.snapshot()
	r.result.Elapsed = time.Since(r.start)
	if err != nil && r.result.Error == "" {
		r.result.Error = err.Error()
	}

	metrics.ObserveOperation(r.result.Kind, r.result.Operation, string(r.result.Status), r.result.Elapsed)
	r.o.obs.Event(Event{
		Type:     EventOperationCompleted,
		Kind:     r.result.Kind,
		Resource: r.result.ID,
		Message:  fmt.Sprintf("%s finished with status %s in %v", r.result.Operation, r.result.Status, r.result.Elapsed.Round(time.Millisecond)),
		Fields:   map[string]string{"status": string(r.result.Status), "attempts": fmt.Sprintf("%d", r.result.Attempts())},
	})

	return r.result, err
}

// call executes one logical REST call through the retry policy. The request
// is rebuilt for every attempt so no state leaks between attempts.
func (o *Orchestrator) call(ctx context.Context, exec api.Executor, operation string, build func() (api.Request, error)) (*api.Response, error) {
	var resp *api.Response
	err := retry.Do(ctx, func(ctx context.Context) error {
		req, err := build()
		if err != nil {
			return retry.Fatal(err)
		}
		r, err := exec.Execute(ctx, o.cred, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, o.retryOptions(operation)...)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (o *Orchestrator) retryOptions(operation string) []retry.Option {
	opts := []retry.Option{
		retry.WithMaxAttempts(o.timeouts.RetryMaxAttempts),
		retry.WithBaseDelay(o.timeouts.RetryBaseDelay),
		retry.WithMaxDelay(o.timeouts.RetryMaxDelay),
		retry.WithOnWait(func(attempt int, delay time.Duration) {
			metrics.ObserveRetryWait(operation)
			o.obs.Event(Event{
				Type:    EventRetryWaiting,
				Kind:    o.kind.Name(),
				Message: fmt.Sprintf("%s attempt %d failed, retrying in %v", operation, attempt, delay),
				Fields:  map[string]string{"operation": operation, "attempt": fmt.Sprintf("%d", attempt)},
			})
		}),
	}
	if o.rand != nil {
		opts = append(opts, retry.WithRand(o.rand))
	}
	return opts
}

// poll wraps one status-check flavor into a StatusCheck and waits for a
// terminal status. The status request is rebuilt for every iteration.
func (o *Orchestrator) poll(ctx context.Context, exec *tracedExecutor, build func() api.Request, extract func(*api.Response) (string, error), mapping StateMapping, resource string) (Status, string, error) {
	exec.phase("status")
	check := func(ctx context.Context) (string, Status, error) {
		resp, err := o.call(ctx, exec, "status", func() (api.Request, error) {
			return build(), nil
		})
		if err != nil {
			return "", StatusUnknown, err
		}
		raw, err := extract(resp)
		if err != nil {
			return "", StatusUnknown, &ExtractionError{What: "state", Err: err}
		}
		return raw, mapping.Map(raw), nil
	}

	return waitForTerminal(ctx, check, o.timeouts.PollTimeout, o.timeouts.PollInterval, o.obs, o.kind.Name(), resource)
}

// findExisting is the best-effort idempotency lookup. Lookup failures fall
// through to a normal create rather than failing the run.
func (o *Orchestrator) findExisting(ctx context.Context, exec *tracedExecutor, name string) (string, bool) {
	finder, ok := o.kind.(Finder)
	if !ok {
		return "", false
	}

	exec.phase("list")
	resp, err := o.call(ctx, exec, "list", func() (api.Request, error) {
		return finder.ListRequest(), nil
	})
	if err != nil {
		o.obs.Printf("existing-resource lookup for %s %q failed, proceeding with create: %v", o.kind.Name(), name, err)
		return "", false
	}

	id, state, found := finder.FindByName(resp, name)
	if !found {
		return "", false
	}

	// A resource stuck in a failed state is not "already provisioned";
	// fall through and create a fresh one.
	if mapping := o.kind.CreateStates(); mapping != nil && mapping.Map(state) == StatusFailed {
		o.obs.Printf("existing %s %q is in failed state %s, creating a replacement", o.kind.Name(), name, state)
		return "", false
	}

	return id, true
}

// cleanup issues a best-effort delete after a failed creation. Its failure
// is recorded on the result but never masks the original error.
func (o *Orchestrator) cleanup(ctx context.Context, run *orchestrationRun, id string) {
	o.obs.Event(Event{
		Type:     EventResourceDeleting,
		Kind:     o.kind.Name(),
		Resource: id,
		Message:  "cleaning up failed " + o.kind.Name(),
	})

	run.exec.phase("cleanup")
	_, err := o.call(ctx, run.exec, "cleanup", func() (api.Request, error) {
		return o.kind.DeleteRequest(id), nil
	})
	if err != nil {
		run.result.Cleanup = err.Error()
		o.obs.Printf("cleanup delete of %s %s failed: %v", o.kind.Name(), id, err)
	}
}
