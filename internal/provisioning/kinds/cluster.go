package kinds

import (
	"fmt"
	"net/url"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/provisioning"
)

const (
	clusterCreatePath = "/api/2.0/clusters/create"
	clusterEditPath   = "/api/2.0/clusters/edit"
	clusterDeletePath = "/api/2.0/clusters/delete"
	clusterGetPath    = "/api/2.0/clusters/get"
	clusterListPath   = "/api/2.0/clusters/list"
)

// Cluster drives the lifecycle of a compute cluster. Creation is
// asynchronous: the cluster passes through PENDING before reaching RUNNING
// or a failed state, and termination passes through TERMINATING.
type Cluster struct{}

// NewCluster returns the cluster kind strategy.
func NewCluster() *Cluster {
	return &Cluster{}
}

// Name implements provisioning.Kind.
func (c *Cluster) Name() string {
	return "cluster"
}

// CreateRequest implements provisioning.Kind. The desired payload is passed
// through; the cluster name and a deterministic idempotency token are
// filled in when absent.
func (c *Cluster) CreateRequest(spec provisioning.Spec) (api.Request, error) {
	payload := clonePayload(spec.Payload)
	if _, ok := payload["cluster_name"]; !ok {
		if spec.Name == "" {
			return api.Request{}, fmt.Errorf("cluster spec needs a name")
		}
		payload["cluster_name"] = spec.Name
	}
	if _, ok := payload["idempotency_token"]; !ok {
		name, _ := payload["cluster_name"].(string)
		payload["idempotency_token"] = idempotencyToken(c.Name(), name)
	}
	return api.Post(clusterCreatePath, payload), nil
}

// UpdateRequest implements provisioning.Kind.
func (c *Cluster) UpdateRequest(id string, spec provisioning.Spec) (api.Request, error) {
	payload := clonePayload(spec.Payload)
	payload["cluster_id"] = id
	return api.Post(clusterEditPath, payload), nil
}

// DeleteRequest implements provisioning.Kind.
func (c *Cluster) DeleteRequest(id string) api.Request {
	return api.Post(clusterDeletePath, map[string]any{"cluster_id": id})
}

// StatusRequest implements provisioning.Kind.
func (c *Cluster) StatusRequest(id string) api.Request {
	return api.Get(clusterGetPath, url.Values{"cluster_id": {id}})
}

// ExtractID implements provisioning.Kind.
func (c *Cluster) ExtractID(resp *api.Response) (string, error) {
	return extractString(resp, "cluster_id")
}

// ExtractState implements provisioning.Kind.
func (c *Cluster) ExtractState(resp *api.Response) (string, error) {
	state, ok := resp.StringField("state")
	if !ok {
		return "", fmt.Errorf("cluster status response has no state field")
	}
	return state, nil
}

// CreateStates implements provisioning.Kind.
func (c *Cluster) CreateStates() provisioning.StateMapping {
	return provisioning.StateMapping{
		"PENDING":    provisioning.StatusPending,
		"RESTARTING": provisioning.StatusRunning,
		"RESIZING":   provisioning.StatusRunning,
		"RUNNING":    provisioning.StatusSucceeded,
		// A cluster that starts terminating during creation is on its way
		// to TERMINATED; keep watching until it gets there.
		"TERMINATING": provisioning.StatusRunning,
		"TERMINATED":  provisioning.StatusFailed,
		"ERROR":       provisioning.StatusFailed,
	}
}

// DeleteStates implements provisioning.Kind.
func (c *Cluster) DeleteStates() provisioning.StateMapping {
	return provisioning.StateMapping{
		"PENDING":     provisioning.StatusRunning,
		"RESTARTING":  provisioning.StatusRunning,
		"RESIZING":    provisioning.StatusRunning,
		"RUNNING":     provisioning.StatusRunning,
		"TERMINATING": provisioning.StatusRunning,
		"TERMINATED":  provisioning.StatusSucceeded,
		"ERROR":       provisioning.StatusFailed,
	}
}

// ListRequest implements provisioning.Finder.
func (c *Cluster) ListRequest() api.Request {
	return api.Get(clusterListPath, nil)
}

// FindByName implements provisioning.Finder.
func (c *Cluster) FindByName(resp *api.Response, name string) (string, string, bool) {
	items, ok := resp.Field("clusters")
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
		if m["cluster_name"] != name {
			continue
		}
		id, err := anyToString(m["cluster_id"], "cluster_id")
		if err != nil {
			continue
		}
		state, _ := m["state"].(string)
		return id, state, true
	}
	return "", "", false
}
