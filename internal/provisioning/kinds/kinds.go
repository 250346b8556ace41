// Package kinds implements the per-resource-kind strategies for the
// control plane's cluster, job, and instance pool APIs.
package kinds

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/provisioning"
)

// ForName returns the Kind strategy for a kind name used in spec files
// and on the command line.
func ForName(name string) (provisioning.Kind, error) {
	switch name {
	case "cluster":
		return NewCluster(), nil
	case "job":
		return NewJob(), nil
	case "instance-pool", "instance_pool", "pool":
		return NewInstancePool(), nil
	default:
		return nil, fmt.Errorf("unknown resource kind %q (expected cluster, job or instance-pool)", name)
	}
}

// Names lists the supported kind names.
func Names() []string {
	return []string{"cluster", "job", "instance-pool"}
}

// idempotencyToken derives a stable token from kind and resource name, so
// a re-executed create converges server-side instead of duplicating.
func idempotencyToken(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("provisor/"+kind+"/"+name)).String()
}

// clonePayload shallow-copies a spec payload so request construction never
// mutates caller-owned state.
func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		out[k] = v
	}
	return out
}

// extractString pulls a string or numeric identifier out of a response
// field. The control plane reports some ids as JSON numbers (job_id,
// run_id); those are normalized to their decimal form.
func extractString(resp *api.Response, field string) (string, error) {
	v, ok := resp.Field(field)
	if !ok {
		return "", fmt.Errorf("response has no %q field", field)
	}
	return anyToString(v, field)
}

func anyToString(v any, field string) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("field %q is empty", field)
		}
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("field %q has unexpected type %T", field, v)
	}
}

// numericID converts a string id back to the JSON number the API expects
// where possible, falling back to the string form.
func numericID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
