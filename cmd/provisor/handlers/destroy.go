package handlers

import "context"

// DestroyOptions are the destroy command's inputs.
type DestroyOptions struct {
	Kind   string
	ID     string
	Host   string
	Token  string
	Output string
}

// Destroy deletes the resource and, for asynchronous kinds, waits for the
// deletion to finish.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	orch, err := buildOrchestrator(opts.Host, opts.Token, opts.Kind)
	if err != nil {
		return err
	}

	result, err := orch.Delete(ctx, opts.ID)
	return emit(result, opts.Output, err)
}
