package kinds

import (
	"fmt"
	"net/url"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/provisioning"
)

const (
	jobCreatePath = "/api/2.1/jobs/create"
	jobResetPath  = "/api/2.1/jobs/reset"
	jobDeletePath = "/api/2.1/jobs/delete"
	jobGetPath    = "/api/2.1/jobs/get"
	jobListPath   = "/api/2.1/jobs/list"
	jobRunNowPath = "/api/2.1/jobs/run-now"
	jobRunGetPath = "/api/2.1/jobs/runs/get"
)

// jobPresent is the synthetic state reported for a job definition: job
// creation is synchronous and a job either exists or does not.
const jobPresent = "PRESENT"

// Job drives the lifecycle of a job definition. Create and delete complete
// synchronously; triggered runs are asynchronous and polled through the
// run's life-cycle and result states.
type Job struct{}

// NewJob returns the job kind strategy.
func NewJob() *Job {
	return &Job{}
}

// Name implements provisioning.Kind.
func (j *Job) Name() string {
	return "job"
}

// CreateRequest implements provisioning.Kind.
func (j *Job) CreateRequest(spec provisioning.Spec) (api.Request, error) {
	payload := clonePayload(spec.Payload)
	if _, ok := payload["name"]; !ok {
		if spec.Name == "" {
			return api.Request{}, fmt.Errorf("job spec needs a name")
		}
		payload["name"] = spec.Name
	}
	return api.Post(jobCreatePath, payload), nil
}

// UpdateRequest implements provisioning.Kind. Jobs are updated by replacing
// their settings wholesale.
func (j *Job) UpdateRequest(id string, spec provisioning.Spec) (api.Request, error) {
	return api.Post(jobResetPath, map[string]any{
		"job_id":       numericID(id),
		"new_settings": spec.Payload,
	}), nil
}

// DeleteRequest implements provisioning.Kind.
func (j *Job) DeleteRequest(id string) api.Request {
	return api.Post(jobDeletePath, map[string]any{"job_id": numericID(id)})
}

// StatusRequest implements provisioning.Kind.
func (j *Job) StatusRequest(id string) api.Request {
	return api.Get(jobGetPath, url.Values{"job_id": {id}})
}

// ExtractID implements provisioning.Kind.
func (j *Job) ExtractID(resp *api.Response) (string, error) {
	return extractString(resp, "job_id")
}

// ExtractState implements provisioning.Kind.
func (j *Job) ExtractState(resp *api.Response) (string, error) {
	if _, ok := resp.Field("job_id"); !ok {
		return "", fmt.Errorf("job status response has no job_id field")
	}
	return jobPresent, nil
}

// CreateStates implements provisioning.Kind. Nil: job creation is
// synchronous, there is nothing to poll.
func (j *Job) CreateStates() provisioning.StateMapping {
	return nil
}

// DeleteStates implements provisioning.Kind. Nil: job deletion is
// synchronous.
func (j *Job) DeleteStates() provisioning.StateMapping {
	return nil
}

// ListRequest implements provisioning.Finder.
func (j *Job) ListRequest() api.Request {
	return api.Get(jobListPath, nil)
}

// FindByName implements provisioning.Finder.
func (j *Job) FindByName(resp *api.Response, name string) (string, string, bool) {
	items, ok := resp.Field("jobs")
	if !ok {
		return "", "", false
	}
	list, ok := items.([]any)
	if !ok {
		return "", "", false
	}

	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		settings, _ := m["settings"].(map[string]any)
		if settings == nil || settings["name"] != name {
			continue
		}
		id, err := anyToString(m["job_id"], "job_id")
		if err != nil {
			continue
		}
		return id, jobPresent, true
	}
	return "", "", false
}

// StartRequest implements provisioning.Starter.
func (j *Job) StartRequest(id string) api.Request {
	return api.Post(jobRunNowPath, map[string]any{"job_id": numericID(id)})
}

// RunStatusRequest implements provisioning.Starter.
func (j *Job) RunStatusRequest(runID string) api.Request {
	return api.Get(jobRunGetPath, url.Values{"run_id": {runID}})
}

// ExtractRunID implements provisioning.Starter.
func (j *Job) ExtractRunID(resp *api.Response) (string, error) {
	return extractString(resp, "run_id")
}

// ExtractRunState implements provisioning.Starter. While a run is in
// flight its life-cycle state is the raw state; once the run terminates
// the result state carries the actual outcome.
func (j *Job) ExtractRunState(resp *api.Response) (string, error) {
	lifeCycle, ok := resp.StringField("state", "life_cycle_state")
	if !ok {
		return "", fmt.Errorf("run status response has no state.life_cycle_state field")
	}
	if lifeCycle == "TERMINATED" {
		if result, ok := resp.StringField("state", "result_state"); ok {
			return result, nil
		}
	}
	return lifeCycle, nil
}

// RunStates implements provisioning.Starter.
func (j *Job) RunStates() provisioning.StateMapping {
	return provisioning.StateMapping{
		"QUEUED":         provisioning.StatusPending,
		"PENDING":        provisioning.StatusPending,
		"RUNNING":        provisioning.StatusRunning,
		"TERMINATING":    provisioning.StatusRunning,
		"SUCCESS":        provisioning.StatusSucceeded,
		"FAILED":         provisioning.StatusFailed,
		"TIMEDOUT":       provisioning.StatusFailed,
		"CANCELED":       provisioning.StatusFailed,
		"SKIPPED":        provisioning.StatusFailed,
		"INTERNAL_ERROR": provisioning.StatusFailed,
	}
}
