package provisioning

import "github.com/imamik/provisor/internal/api"

// Spec is the desired state for one resource of some kind. The payload is
// passed to the control plane as the create (or update) request body.
type Spec struct {
	Name    string
	Payload map[string]any
}

// Kind is the per-resource-kind strategy: it supplies the request builders,
// the extractors, and the terminal-state mappings that the orchestrator and
// poller are generic over.
type Kind interface {
	// Name identifies the kind ("cluster", "job", "instance-pool").
	Name() string

	// CreateRequest builds the create call for the desired spec.
	CreateRequest(spec Spec) (api.Request, error)
	// UpdateRequest builds the update call for an existing resource.
	UpdateRequest(id string, spec Spec) (api.Request, error)
	// DeleteRequest builds the delete call.
	DeleteRequest(id string) api.Request
	// StatusRequest builds a status check. It is invoked fresh for every
	// poll iteration.
	StatusRequest(id string) api.Request

	// ExtractID pulls the new resource identifier out of a create response.
	ExtractID(resp *api.Response) (string, error)
	// ExtractState pulls the raw state field out of a status response.
	ExtractState(resp *api.Response) (string, error)

	// CreateStates maps raw states to statuses while waiting for a created
	// or updated resource to become ready. Nil means creation completes
	// synchronously and is not polled.
	CreateStates() StateMapping
	// DeleteStates is the mapping used while waiting for a deletion.
	// Nil means deletion completes synchronously.
	DeleteStates() StateMapping
}

// Finder is implemented by kinds whose API can enumerate resources, which
// enables the orchestrator's idempotency lookup: re-executing a provision
// run converges on the existing resource instead of duplicating it.
type Finder interface {
	// ListRequest builds the enumeration call.
	ListRequest() api.Request
	// FindByName scans a list response for a resource with the given name,
	// returning its id and raw state.
	FindByName(resp *api.Response, name string) (id, state string, found bool)
}

// Starter is implemented by kinds with a run/start endpoint (jobs). The
// triggered run is polled with its own state mapping.
type Starter interface {
	// StartRequest builds the run-now call for an existing resource.
	StartRequest(id string) api.Request
	// ExtractRunID pulls the run identifier out of the start response.
	ExtractRunID(resp *api.Response) (string, error)
	// RunStatusRequest builds a status check for a run.
	RunStatusRequest(runID string) api.Request
	// ExtractRunState pulls the raw run state out of a run status response.
	ExtractRunState(resp *api.Response) (string, error)
	// RunStates maps raw run states to statuses.
	RunStates() StateMapping
}
