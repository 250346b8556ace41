package handlers

import (
	"context"
	"fmt"
)

// StatusOptions are the status command's inputs.
type StatusOptions struct {
	Kind  string
	ID    string
	Host  string
	Token string
}

// Status performs a one-shot state fetch and prints the raw and
// normalized state.
func Status(ctx context.Context, opts StatusOptions) error {
	orch, err := buildOrchestrator(opts.Host, opts.Token, opts.Kind)
	if err != nil {
		return err
	}

	status, raw, err := orch.Status(ctx, opts.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s %s: %s (%s)\n", opts.Kind, opts.ID, renderStatus(status), raw)
	return nil
}
