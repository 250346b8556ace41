package handlers

import "context"

// RunOptions are the run command's inputs.
type RunOptions struct {
	ID     string
	Host   string
	Token  string
	Output string
}

// Run triggers a job run and polls it to its result state.
func Run(ctx context.Context, opts RunOptions) error {
	orch, err := buildOrchestrator(opts.Host, opts.Token, "job")
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, opts.ID)
	return emit(result, opts.Output, err)
}
