package kinds

import (
	"fmt"
	"net/url"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/provisioning"
)

const (
	poolCreatePath = "/api/2.0/instance-pools/create"
	poolEditPath   = "/api/2.0/instance-pools/edit"
	poolDeletePath = "/api/2.0/instance-pools/delete"
	poolGetPath    = "/api/2.0/instance-pools/get"
	poolListPath   = "/api/2.0/instance-pools/list"
)

// InstancePool drives the lifecycle of a warm instance pool. A pool
// becomes ACTIVE shortly after creation and reaches DELETED after a
// delete call.
type InstancePool struct{}

// NewInstancePool returns the instance pool kind strategy.
func NewInstancePool() *InstancePool {
	return &InstancePool{}
}

// Name implements provisioning.Kind.
func (p *InstancePool) Name() string {
	return "instance-pool"
}

// CreateRequest implements provisioning.Kind.
func (p *InstancePool) CreateRequest(spec provisioning.Spec) (api.Request, error) {
	payload := clonePayload(spec.Payload)
	if _, ok := payload["instance_pool_name"]; !ok {
		if spec.Name == "" {
			return api.Request{}, fmt.Errorf("instance pool spec needs a name")
		}
		payload["instance_pool_name"] = spec.Name
	}
	if _, ok := payload["idempotency_token"]; !ok {
		name, _ := payload["instance_pool_name"].(string)
		payload["idempotency_token"] = idempotencyToken(p.Name(), name)
	}
	return api.Post(poolCreatePath, payload), nil
}

// UpdateRequest implements provisioning.Kind.
func (p *InstancePool) UpdateRequest(id string, spec provisioning.Spec) (api.Request, error) {
	payload := clonePayload(spec.Payload)
	payload["instance_pool_id"] = id
	return api.Post(poolEditPath, payload), nil
}

// DeleteRequest implements provisioning.Kind.
func (p *InstancePool) DeleteRequest(id string) api.Request {
	return api.Post(poolDeletePath, map[string]any{"instance_pool_id": id})
}

// StatusRequest implements provisioning.Kind.
func (p *InstancePool) StatusRequest(id string) api.Request {
	return api.Get(poolGetPath, url.Values{"instance_pool_id": {id}})
}

// ExtractID implements provisioning.Kind.
func (p *InstancePool) ExtractID(resp *api.Response) (string, error) {
	return extractString(resp, "instance_pool_id")
}

// ExtractState implements provisioning.Kind.
func (p *InstancePool) ExtractState(resp *api.Response) (string, error) {
	state, ok := resp.StringField("state")
	if !ok {
		return "", fmt.Errorf("instance pool status response has no state field")
	}
	return state, nil
}

// CreateStates implements provisioning.Kind.
func (p *InstancePool) CreateStates() provisioning.StateMapping {
	return provisioning.StateMapping{
		"ACTIVE":  provisioning.StatusSucceeded,
		"STOPPED": provisioning.StatusFailed,
		"DELETED": provisioning.StatusFailed,
	}
}

// DeleteStates implements provisioning.Kind.
func (p *InstancePool) DeleteStates() provisioning.StateMapping {
	return provisioning.StateMapping{
		"ACTIVE":  provisioning.StatusRunning,
		"STOPPED": provisioning.StatusRunning,
		"DELETED": provisioning.StatusSucceeded,
	}
}

// ListRequest implements provisioning.Finder.
func (p *InstancePool) ListRequest() api.Request {
	return api.Get(poolListPath, nil)
}

// FindByName implements provisioning.Finder.
func (p *InstancePool) FindByName(resp *api.Response, name string) (string, string, bool) {
	items, ok := resp.Field("instance_pools")
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
		if m["instance_pool_name"] != name {
			continue
		}
		id, err := anyToString(m["instance_pool_id"], "instance_pool_id")
		if err != nil {
			continue
		}
		state, _ := m["state"].(string)
		return id, state, true
	}
	return "", "", false
}
