package handlers

import (
	"context"

	"github.com/imamik/provisor/internal/provisioning"
)

// ProvisionOptions are the provision command's inputs.
type ProvisionOptions struct {
	SpecPath   string
	Host       string
	Token      string
	Output     string
	NoConverge bool
}

// Provision creates the resource described by the spec file and waits for
// it to become ready.
//
// The workflow:
//  1. Load and validate the spec file and the endpoint configuration
//  2. Resolve the kind strategy (cluster, job, instance-pool)
//  3. Provision through the orchestrator: lookup, create, poll, cleanup
//  4. Render the structured result
//
// Unless --no-converge is set, a resource with the same name that already
// exists and is healthy is adopted instead of duplicated, so re-running a
// partially failed automation converges.
func Provision(ctx context.Context, opts ProvisionOptions) error {
	spec, err := loadSpecFile(opts.SpecPath)
	if err != nil {
		return err
	}

	var orchOpts []provisioning.Option
	if !opts.NoConverge {
		orchOpts = append(orchOpts, provisioning.WithIdempotencyLookup())
	}

	orch, err := buildOrchestrator(opts.Host, opts.Token, spec.Kind, orchOpts...)
	if err != nil {
		return err
	}

	result, err := orch.Provision(ctx, provisioning.Spec{Name: spec.Name, Payload: spec.Spec})
	return emit(result, opts.Output, err)
}
